package entity

import (
	"math"

	"tickframe/pkg/geom"
)

// Momentum is the (direction, cost) pair governing where and how often an
// entity moves. Cost is in ticks per step.
type Momentum struct {
	Direction geom.Vec
	Cost      int64
}

// CostFunc prices a candidate direction for an entity with the given current
// momentum and generation. Implementations must be pure.
type CostFunc func(current Momentum, candidate geom.Offset, generation int) int64

// DefaultCost scales cost with step length and lineage depth, and charges a
// penalty for turning against the current direction.
type DefaultCost struct {
	Base          float64
	PerGeneration int64
	Reverse       int64
}

// Cost implements CostFunc.
func (c DefaultCost) Cost(current Momentum, candidate geom.Offset, generation int) int64 {
	cost := int64(math.Ceil(c.Base*candidate.Magnitude - 1e-9))
	cost += c.PerGeneration * int64(generation)
	if !current.Direction.IsZero() && current.Direction.Dim() == candidate.Dir.Dim() &&
		current.Direction.Dot(candidate.Dir) < 0 {
		cost += c.Reverse
	}
	if cost < 1 {
		cost = 1
	}
	return cost
}

// Combine returns the energy-weighted momentum of parts at tick. The
// direction snaps to the best aligned offset; a balanced sum yields rest.
// When no part carries energy every part weighs the same.
func Combine(offsets []geom.Offset, parts []Single, tick int64) Momentum {
	if len(parts) == 0 {
		return Momentum{Cost: 1}
	}
	dim := parts[0].Position.Dim()
	weights := make([]int64, len(parts))
	var total int64
	for i, p := range parts {
		w := p.Energy(tick)
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = int64(len(parts))
	}

	sum := make([]float64, dim)
	var costSum int64
	for i, p := range parts {
		for k := 0; k < dim && k < p.Momentum.Direction.Dim(); k++ {
			sum[k] += float64(weights[i]) * float64(p.Momentum.Direction.At(k))
		}
		costSum += weights[i] * p.Momentum.Cost
	}

	m := Momentum{Direction: geom.Origin(dim)}
	if idx := geom.Nearest(offsets, sum); idx >= 0 {
		m.Direction = offsets[idx].Dir
	}
	m.Cost = (costSum + total/2) / total
	if m.Cost < 1 {
		m.Cost = 1
	}
	return m
}
