package geom

import (
	"fmt"
	"slices"
)

// Offset is a discrete step direction together with its Euclidean magnitude.
type Offset struct {
	Dir       Vec
	Magnitude float64
}

// Offsets enumerates every non-zero integer vector of the given dimension
// whose Euclidean length does not exceed radius. The result is sorted
// lexicographically so callers can rely on a canonical order.
func Offsets(dim, radius int) ([]Offset, error) {
	if dim < 1 || dim > MaxDim {
		return nil, fmt.Errorf("%w: %d", ErrDimension, dim)
	}
	if radius < 1 {
		return nil, fmt.Errorf("geom: radius must be positive, got %d", radius)
	}

	r := int64(radius)
	r2 := r * r
	var out []Offset
	cur := make([]int64, dim)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dim {
			v, _ := Make(cur)
			if v.IsZero() || v.Norm2() > r2 {
				return
			}
			out = append(out, Offset{Dir: v, Magnitude: v.Length()})
			return
		}
		for c := -r; c <= r; c++ {
			cur[axis] = c
			walk(axis + 1)
		}
	}
	walk(0)

	slices.SortFunc(out, func(a, b Offset) int { return a.Dir.Compare(b.Dir) })
	return out, nil
}

// Nearest returns the index of the offset best aligned with the real-valued
// direction d (highest cosine similarity). Ties prefer the shorter offset,
// then the earlier one in canonical order. It returns -1 when d is zero or
// the offset set is empty.
func Nearest(offsets []Offset, d []float64) int {
	var dn float64
	for _, x := range d {
		dn += x * x
	}
	if dn == 0 {
		return -1
	}
	best := -1
	var bestCos, bestMag float64
	for i, off := range offsets {
		var dot float64
		for k := 0; k < off.Dir.Dim() && k < len(d); k++ {
			dot += float64(off.Dir.At(k)) * d[k]
		}
		cos := dot / off.Magnitude
		switch {
		case best < 0, cos > bestCos+1e-12:
		case cos > bestCos-1e-12 && off.Magnitude < bestMag:
		default:
			continue
		}
		best, bestCos, bestMag = i, cos, off.Magnitude
	}
	return best
}

// IndexOf returns the index of the offset with direction dir, or -1.
func IndexOf(offsets []Offset, dir Vec) int {
	for i, off := range offsets {
		if off.Dir == dir {
			return i
		}
	}
	return -1
}
