package entity

import (
	"errors"
	"fmt"

	"tickframe/pkg/geom"
)

var (
	// ErrMalformedMomentum reports a non-positive cost or a direction that
	// does not match the entity's dimension.
	ErrMalformedMomentum = errors.New("entity: malformed momentum")
	// ErrUnclassifiable reports a colliding group no outcome applies to.
	ErrUnclassifiable = errors.New("entity: unclassifiable collision")
)

// Evaluate asks e to respond to tick. It reads nothing but e and r, so any
// number of evaluations may run concurrently.
func Evaluate(e Entity, tick int64, r *Rules) (Action, error) {
	switch v := e.(type) {
	case Single:
		return evaluateSingle(v, tick, r)
	case Colliding:
		return evaluateColliding(v, tick, r)
	}
	return Action{}, fmt.Errorf("entity: unknown variant %T", e)
}

func checkMomentum(s Single) error {
	if s.Momentum.Cost <= 0 {
		return fmt.Errorf("%w: cost %d", ErrMalformedMomentum, s.Momentum.Cost)
	}
	if s.Momentum.Direction.Dim() != s.Position.Dim() {
		return fmt.Errorf("%w: direction %v at position %v", ErrMalformedMomentum, s.Momentum.Direction, s.Position)
	}
	return nil
}

func evaluateSingle(s Single, tick int64, r *Rules) (Action, error) {
	if err := checkMomentum(s); err != nil {
		return Action{}, err
	}
	if tick < s.NextAction {
		return Wait(), nil
	}
	if tick >= s.EndOfLife && len(s.ChildCosts) > 0 && s.Energy(tick) >= s.DivisionCost() {
		return divide(s, tick, r), nil
	}

	next := s
	next.Position = s.Position.Add(s.Momentum.Direction)
	next.NextAction = tick + s.Momentum.Cost
	return Update(OutcomeMoved, next), nil
}

func divide(s Single, tick int64, r *Rules) Action {
	thresholds := make([]int64, len(s.ChildCosts))
	for i, c := range s.ChildCosts {
		thresholds[i] = c.Cost
	}
	energies := r.Energy.Split(s.Energy(tick), thresholds)

	children := make([]Entity, len(s.ChildCosts))
	for i, c := range s.ChildCosts {
		m := Momentum{Direction: c.Dir, Cost: c.Cost}
		children[i] = r.Spawn(ChildID(s.ID, tick, i), tick, s.Position.Add(c.Dir), s.Generation+1, m, energies[i])
	}
	return Update(OutcomeDivided, children...)
}

func evaluateColliding(c Colliding, tick int64, r *Rules) (Action, error) {
	if len(c.Constituents) < 2 {
		return Action{}, fmt.Errorf("%w: %d constituents", ErrUnclassifiable, len(c.Constituents))
	}
	for _, s := range c.Constituents {
		if err := checkMomentum(s); err != nil {
			return Action{}, fmt.Errorf("%w: constituent %s: %w", ErrUnclassifiable, s.ID, err)
		}
		if s.Position.Dim() != c.Position.Dim() {
			return Action{}, fmt.Errorf("%w: constituent %s dimension %d", ErrUnclassifiable, s.ID, s.Position.Dim())
		}
	}
	if tick < c.Ready() {
		return Wait(), nil
	}

	energy := c.Energy(tick)
	cost := c.Cost()
	switch {
	case cost > energy:
		merged := r.Merge(MergeID(c.ID, tick), tick, c.Position, c.Constituents, energy)
		return Update(OutcomeMerged, merged), nil
	case energy >= r.ExplosionThreshold:
		return explode(c, tick, energy, r), nil
	case cost < r.AnnihilationFloor:
		a := Update(OutcomeAnnihilated)
		a.Annihilated = energy
		return a, nil
	}
	return bounce(c, tick, r), nil
}

// explode emits one Single per affordable offset. The combined energy is
// split equally among the survivors; a direction survives when its cost fits
// within an equal share over all offsets.
func explode(c Colliding, tick, energy int64, r *Rules) Action {
	combined := Combine(r.Offsets, c.Constituents, tick)
	gen := 0
	for _, s := range c.Constituents {
		gen = max(gen, s.Generation)
	}
	gen++

	share := energy / int64(len(r.Offsets))
	type survivor struct {
		off  geom.Offset
		cost int64
	}
	var alive []survivor
	for _, off := range r.Offsets {
		if cost := r.Cost(combined, off, gen); cost <= share {
			alive = append(alive, survivor{off: off, cost: cost})
		}
	}
	if len(alive) == 0 {
		a := Update(OutcomeAnnihilated)
		a.Annihilated = energy
		return a
	}

	k := int64(len(alive))
	each, rem := energy/k, energy%k
	children := make([]Entity, len(alive))
	for i, sv := range alive {
		e := each
		if int64(i) < rem {
			e++
		}
		m := Momentum{Direction: sv.off.Dir, Cost: sv.cost}
		children[i] = r.Spawn(ChildID(c.ID, tick, i), tick, c.Position.Add(sv.off.Dir), gen, m, e)
	}
	return Update(OutcomeExploded, children...)
}

// bounce separates the constituents: each keeps its identity and energy and
// leaves along its reversed direction.
func bounce(c Colliding, tick int64, r *Rules) Action {
	out := make([]Entity, len(c.Constituents))
	for i, s := range c.Constituents {
		m := s.Momentum
		if rev := m.Direction.Neg(); !rev.IsZero() {
			m.Direction = rev
			if idx := geom.IndexOf(r.Offsets, rev); idx >= 0 {
				m.Cost = r.Cost(s.Momentum, r.Offsets[idx], s.Generation)
			}
		}
		next := s
		next.Position = c.Position.Add(m.Direction)
		next.Momentum = m
		next.ChildCosts = r.ChildCosts(m, s.Generation)
		next.NextAction = tick + m.Cost
		out[i] = next
	}
	return Update(OutcomeBounced, out...)
}
