package geom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDim is the largest supported dimensionality.
const MaxDim = 3

// ErrDimension reports an unsupported or mismatched dimensionality.
var ErrDimension = errors.New("geom: invalid dimension")

// Vec is an immutable integer tuple used both as a lattice position and as a
// direction. Vec values are comparable and safe to use as map keys; two
// vectors are equal iff their dimension and every component match.
type Vec struct {
	dim uint8
	c   [MaxDim]int64
}

// V builds a vector from its components. It panics when more than MaxDim
// components are supplied; use Make when the input is untrusted.
func V(coords ...int64) Vec {
	v, err := Make(coords)
	if err != nil {
		panic(err)
	}
	return v
}

// Make builds a vector from a component slice.
func Make(coords []int64) (Vec, error) {
	if len(coords) == 0 || len(coords) > MaxDim {
		return Vec{}, fmt.Errorf("%w: %d components", ErrDimension, len(coords))
	}
	v := Vec{dim: uint8(len(coords))}
	copy(v.c[:], coords)
	return v, nil
}

// Origin returns the zero vector of the given dimension.
func Origin(dim int) Vec {
	if dim < 1 || dim > MaxDim {
		panic(fmt.Sprintf("geom: origin of dimension %d", dim))
	}
	return Vec{dim: uint8(dim)}
}

// Dim reports the number of components.
func (v Vec) Dim() int { return int(v.dim) }

// At returns component i.
func (v Vec) At(i int) int64 { return v.c[i] }

// Coords returns a copy of the components.
func (v Vec) Coords() []int64 {
	out := make([]int64, v.dim)
	copy(out, v.c[:v.dim])
	return out
}

// IsZero reports whether every component is zero.
func (v Vec) IsZero() bool {
	return v.c == [MaxDim]int64{}
}

// Add returns v+o. Both vectors must share a dimension.
func (v Vec) Add(o Vec) Vec {
	out := Vec{dim: v.dim}
	for i := 0; i < int(v.dim); i++ {
		out.c[i] = v.c[i] + o.c[i]
	}
	return out
}

// Neg returns -v.
func (v Vec) Neg() Vec {
	out := Vec{dim: v.dim}
	for i := 0; i < int(v.dim); i++ {
		out.c[i] = -v.c[i]
	}
	return out
}

// Dot returns the inner product of v and o.
func (v Vec) Dot(o Vec) int64 {
	var sum int64
	for i := 0; i < int(v.dim); i++ {
		sum += v.c[i] * o.c[i]
	}
	return sum
}

// Norm2 returns the squared Euclidean length.
func (v Vec) Norm2() int64 { return v.Dot(v) }

// Length returns the Euclidean length.
func (v Vec) Length() float64 { return math.Sqrt(float64(v.Norm2())) }

// Less orders vectors lexicographically by dimension, then component.
func (v Vec) Less(o Vec) bool {
	if v.dim != o.dim {
		return v.dim < o.dim
	}
	for i := 0; i < int(v.dim); i++ {
		if v.c[i] != o.c[i] {
			return v.c[i] < o.c[i]
		}
	}
	return false
}

// Compare returns -1, 0 or +1 following Less.
func (v Vec) Compare(o Vec) int {
	switch {
	case v.Less(o):
		return -1
	case o.Less(v):
		return 1
	}
	return 0
}

// String renders the vector as "(x,y,z)".
func (v Vec) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < int(v.dim); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v.c[i], 10))
	}
	b.WriteByte(')')
	return b.String()
}
