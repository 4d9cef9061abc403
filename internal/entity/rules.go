package entity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tickframe/pkg/geom"
)

// Rules holds the world constants every evaluation reads. A Rules value is
// built once per run and shared read-only by all evaluators.
type Rules struct {
	Dim     int
	Offsets []geom.Offset
	Cost    CostFunc
	Energy  EnergyPolicy

	DivisionThreshold  int64
	ExplosionThreshold int64
	AnnihilationFloor  int64
}

// NewRules builds the offset table for dim/radius and fills defaults.
func NewRules(dim, radius int, cost CostFunc, energy EnergyPolicy) (*Rules, error) {
	offs, err := geom.Offsets(dim, radius)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		cost = DefaultCost{Base: 1, Reverse: 1}.Cost
	}
	if energy == nil {
		energy = ResetEnergy{}
	}
	return &Rules{Dim: dim, Offsets: offs, Cost: cost, Energy: energy}, nil
}

// Validate rejects thresholds that make division, explosion or annihilation
// meaningless.
func (r *Rules) Validate() error {
	var errs []error
	if r.Dim < 1 || r.Dim > geom.MaxDim {
		errs = append(errs, fmt.Errorf("%w: %d", geom.ErrDimension, r.Dim))
	}
	if len(r.Offsets) == 0 {
		errs = append(errs, errors.New("offset table is empty"))
	}
	if r.Cost == nil || r.Energy == nil {
		errs = append(errs, errors.New("cost function and energy policy are required"))
	}
	if r.DivisionThreshold <= 0 {
		errs = append(errs, fmt.Errorf("division threshold must be positive, got %d", r.DivisionThreshold))
	}
	if r.ExplosionThreshold <= 0 {
		errs = append(errs, fmt.Errorf("explosion threshold must be positive, got %d", r.ExplosionThreshold))
	}
	if r.AnnihilationFloor < 0 {
		errs = append(errs, fmt.Errorf("annihilation floor must not be negative, got %d", r.AnnihilationFloor))
	}
	return errors.Join(errs...)
}

// ChildCosts prices every offset for an entity with momentum m at the given
// generation.
func (r *Rules) ChildCosts(m Momentum, generation int) []ChildCost {
	out := make([]ChildCost, len(r.Offsets))
	for i, off := range r.Offsets {
		out[i] = ChildCost{Dir: off.Dir, Cost: r.Cost(m, off, generation)}
	}
	return out
}

// Spawn creates a Single born at tick carrying the given starting energy.
func (r *Rules) Spawn(id uuid.UUID, tick int64, at geom.Vec, generation int, m Momentum, energy int64) Single {
	return Single{
		ID:                id,
		Birth:             tick - energy,
		Position:          at,
		Generation:        generation,
		Momentum:          m,
		ChildCosts:        r.ChildCosts(m, generation),
		DivisionThreshold: r.DivisionThreshold,
		NextAction:        tick + m.Cost,
		EndOfLife:         tick + r.DivisionThreshold,
	}
}

// Merge fuses parts into one Single at tick carrying energy. The result takes
// the deepest generation among the parts and their energy-weighted momentum.
func (r *Rules) Merge(id uuid.UUID, tick int64, at geom.Vec, parts []Single, energy int64) Single {
	gen := 0
	for _, p := range parts {
		gen = max(gen, p.Generation)
	}
	return r.Spawn(id, tick, at, gen, Combine(r.Offsets, parts, tick), energy)
}
