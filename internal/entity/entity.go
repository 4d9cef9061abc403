// Package entity models simulated entities as temporal processes: immutable
// values that, given the current tick, produce their own successors.
package entity

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"tickframe/pkg/geom"
)

// Entity is the closed set of entity variants: Single and Colliding. The
// unexported method keeps the set sealed to this package.
type Entity interface {
	Ident() uuid.UUID
	Pos() geom.Vec
	// Energy is derived from the tick, never stored.
	Energy(tick int64) int64
	sealed()
}

// ChildCost is the energy threshold (and resulting momentum cost) of one
// potential offspring direction.
type ChildCost struct {
	Dir  geom.Vec
	Cost int64
}

// Single is a free entity. Values are never mutated after construction:
// moving produces a new Single with the same ID. ChildCosts is shared between
// successive values and must be treated as read-only.
type Single struct {
	ID                uuid.UUID
	Birth             int64
	Position          geom.Vec
	Generation        int
	Momentum          Momentum
	ChildCosts        []ChildCost
	DivisionThreshold int64
	NextAction        int64
	EndOfLife         int64
}

func (s Single) Ident() uuid.UUID { return s.ID }
func (s Single) Pos() geom.Vec    { return s.Position }
func (Single) sealed()            {}

// Energy returns the accumulated energy at tick.
func (s Single) Energy(tick int64) int64 { return tick - s.Birth }

// DivisionCost is the energy required before the entity may divide.
func (s Single) DivisionCost() int64 {
	var sum int64
	for _, c := range s.ChildCosts {
		sum += c.Cost
	}
	return sum
}

// Colliding holds two or more entities resolving an interaction at one
// position. Constituents are kept sorted by ID.
type Colliding struct {
	ID           uuid.UUID
	Position     geom.Vec
	Since        int64
	Constituents []Single
}

func (c Colliding) Ident() uuid.UUID { return c.ID }
func (c Colliding) Pos() geom.Vec    { return c.Position }
func (Colliding) sealed()            {}

// Energy returns the combined energy of all constituents.
func (c Colliding) Energy(tick int64) int64 {
	var sum int64
	for _, s := range c.Constituents {
		sum += s.Energy(tick)
	}
	return sum
}

// Cost returns the combined momentum cost of all constituents.
func (c Colliding) Cost() int64 {
	var sum int64
	for _, s := range c.Constituents {
		sum += s.Momentum.Cost
	}
	return sum
}

// Ready is the first tick at which every constituent may act again. The group
// stays parked until then, so a bounced constituent never moves twice within
// its momentum cost.
func (c Colliding) Ready() int64 {
	var ready int64
	for _, s := range c.Constituents {
		ready = max(ready, s.NextAction)
	}
	return ready
}

// Kind names the variant of e.
func Kind(e Entity) string {
	switch e.(type) {
	case Single:
		return "single"
	case Colliding:
		return "colliding"
	}
	return "unknown"
}

// Flatten expands a group into its Singles (Colliding constituents are
// unpacked) and sorts them by ID, the canonical combination order.
func Flatten(group []Entity) []Single {
	var out []Single
	for _, e := range group {
		switch v := e.(type) {
		case Single:
			out = append(out, v)
		case Colliding:
			out = append(out, v.Constituents...)
		}
	}
	SortSingles(out)
	return out
}

// SortSingles orders singles by ID bytes.
func SortSingles(s []Single) {
	slices.SortFunc(s, func(a, b Single) int { return compareID(a.ID, b.ID) })
}

// SortByID orders entities by ID bytes.
func SortByID(es []Entity) {
	slices.SortFunc(es, func(a, b Entity) int { return compareID(a.Ident(), b.Ident()) })
}

func compareID(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) }
