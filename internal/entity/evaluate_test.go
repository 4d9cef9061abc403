package entity

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"tickframe/pkg/geom"
)

func testRules(t *testing.T, dim int) *Rules {
	t.Helper()
	r, err := NewRules(dim, 1, DefaultCost{Base: 1, Reverse: 1}.Cost, ResetEnergy{})
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	r.DivisionThreshold = 5
	r.ExplosionThreshold = 100
	r.AnnihilationFloor = 4
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return r
}

func divisionSeed(r *Rules) Single {
	s := r.Spawn(SeedID(1, 0), 0, geom.Origin(1), 0, Momentum{Direction: geom.Origin(1), Cost: 1}, 0)
	s.ChildCosts = []ChildCost{{Dir: geom.V(-1), Cost: 2}, {Dir: geom.V(1), Cost: 2}}
	return s
}

func TestSingleWaitsUntilNextAction(t *testing.T) {
	r := testRules(t, 1)
	s := r.Spawn(SeedID(1, 0), 0, geom.V(0), 0, Momentum{Direction: geom.V(1), Cost: 3}, 0)
	s.EndOfLife = 1 << 40

	var moves []int64
	cur := Entity(s)
	for tick := int64(0); tick < 20; tick++ {
		a, err := Evaluate(cur, tick, r)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if a.Kind == ActionWait {
			continue
		}
		if a.Outcome != OutcomeMoved || len(a.Next) != 1 {
			t.Fatalf("tick %d: expected a single move, got %v with %d successors", tick, a.Outcome, len(a.Next))
		}
		next := a.Next[0].(Single)
		if next.ID != s.ID || next.Birth != s.Birth {
			t.Fatal("moving must preserve identity and birth")
		}
		if next.Position == cur.Pos() {
			t.Fatal("move must change position")
		}
		moves = append(moves, tick)
		cur = next
	}
	if len(moves) < 2 {
		t.Fatalf("expected several moves, got %v", moves)
	}
	for i := 1; i < len(moves); i++ {
		if moves[i]-moves[i-1] < 3 {
			t.Fatalf("moves %v violate the 3-tick sample rate", moves)
		}
	}
	if cur.Pos() != geom.V(int64(len(moves))) {
		t.Fatalf("expected position %d, got %v", len(moves), cur.Pos())
	}
}

func TestSingleMoveDoesNotMutateOriginal(t *testing.T) {
	r := testRules(t, 2)
	s := r.Spawn(SeedID(1, 0), 0, geom.V(0, 0), 0, Momentum{Direction: geom.V(0, 1), Cost: 1}, 0)
	before := s.Position
	if _, err := Evaluate(s, 1, r); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if s.Position != before {
		t.Fatal("evaluation mutated the original value")
	}
}

func TestDivisionAtThreshold(t *testing.T) {
	r := testRules(t, 1)
	seed := divisionSeed(r)

	a, err := Evaluate(seed, 5, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if a.Outcome != OutcomeDivided {
		t.Fatalf("expected division at tick 5, got %v", a.Outcome)
	}
	if len(a.Next) != 2 {
		t.Fatalf("expected 2 children, got %d", len(a.Next))
	}
	want := map[geom.Vec]bool{geom.V(-1): true, geom.V(1): true}
	for _, e := range a.Next {
		c := e.(Single)
		if !want[c.Position] {
			t.Fatalf("unexpected child position %v", c.Position)
		}
		delete(want, c.Position)
		if c.Generation != seed.Generation+1 {
			t.Fatalf("child generation %d, expected %d", c.Generation, seed.Generation+1)
		}
		if c.Energy(5) != 0 || c.Birth != 5 {
			t.Fatalf("child energy %d at birth, expected 0", c.Energy(5))
		}
		if c.ID == seed.ID {
			t.Fatal("children need fresh identities")
		}
		if c.Momentum.Direction != c.Position || c.Momentum.Cost != 2 {
			t.Fatalf("child momentum %+v must follow its offset and threshold", c.Momentum)
		}
	}
}

func TestDivisionBelowThresholdMoves(t *testing.T) {
	r := testRules(t, 1)
	seed := divisionSeed(r)
	seed.ChildCosts = []ChildCost{{Dir: geom.V(-1), Cost: 3}, {Dir: geom.V(1), Cost: 3}}

	a, err := Evaluate(seed, 5, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if a.Outcome != OutcomeMoved || len(a.Next) != 1 {
		t.Fatalf("energy 5 < 6 must move, got %v with %d successors", a.Outcome, len(a.Next))
	}

	a, err = Evaluate(seed, 6, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if a.Outcome != OutcomeDivided || len(a.Next) != 2 {
		t.Fatalf("energy 6 >= 6 must divide, got %v", a.Outcome)
	}
}

func TestDivisionBeforeEndOfLifeMoves(t *testing.T) {
	r := testRules(t, 1)
	seed := divisionSeed(r)
	a, err := Evaluate(seed, 4, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if a.Outcome != OutcomeMoved {
		t.Fatalf("expected move before end of life, got %v", a.Outcome)
	}
}

func TestConserveEnergyDivisionSumsToParent(t *testing.T) {
	r := testRules(t, 1)
	r.Energy = ConserveEnergy{}
	seed := divisionSeed(r)

	a, err := Evaluate(seed, 9, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var sum int64
	for _, e := range a.Next {
		sum += e.Energy(9)
	}
	if sum != 9 {
		t.Fatalf("children carry %d energy, expected the parent's 9", sum)
	}
}

func TestMalformedMomentumIsReported(t *testing.T) {
	r := testRules(t, 1)
	s := divisionSeed(r)
	s.Momentum.Cost = 0
	if _, err := Evaluate(s, 1, r); !errors.Is(err, ErrMalformedMomentum) {
		t.Fatalf("expected ErrMalformedMomentum, got %v", err)
	}
}

func single(r *Rules, id uuid.UUID, tick int64, at, dir geom.Vec, cost, energy int64) Single {
	return r.Spawn(id, tick, at, 0, Momentum{Direction: dir, Cost: cost}, energy)
}

// colliding groups parts whose inbound moves are complete at tick.
func colliding(tick int64, parts ...Single) Colliding {
	for i := range parts {
		parts[i].NextAction = tick
	}
	SortSingles(parts)
	return Colliding{ID: CollisionID(parts[0].ID, tick), Position: parts[0].Position, Since: tick, Constituents: parts}
}

func TestCollidingMergesWhenCostExceedsEnergy(t *testing.T) {
	r := testRules(t, 1)
	a := single(r, SeedID(1, 0), 10, geom.V(0), geom.V(1), 9, 3)
	b := single(r, SeedID(1, 1), 10, geom.V(0), geom.V(-1), 9, 2)

	act, err := Evaluate(colliding(10, a, b), 10, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if act.Outcome != OutcomeMerged || len(act.Next) != 1 {
		t.Fatalf("expected merge, got %v", act.Outcome)
	}
	m := act.Next[0].(Single)
	if m.Energy(10) != 5 {
		t.Fatalf("merged energy %d, expected 5", m.Energy(10))
	}
	if m.Momentum.Direction != geom.V(1) {
		t.Fatalf("merged direction %v, expected toward the heavier +x", m.Momentum.Direction)
	}
}

func TestCollidingExplodesAboveThreshold(t *testing.T) {
	r := testRules(t, 2)
	r.ExplosionThreshold = 20
	a := single(r, SeedID(1, 0), 50, geom.V(0, 0), geom.V(1, 0), 1, 30)
	b := single(r, SeedID(1, 1), 50, geom.V(0, 0), geom.V(-1, 0), 1, 11)

	act, err := Evaluate(colliding(50, a, b), 50, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if act.Outcome != OutcomeExploded {
		t.Fatalf("expected explosion, got %v", act.Outcome)
	}
	if len(act.Next) == 0 || len(act.Next) > len(r.Offsets) {
		t.Fatalf("unexpected fragment count %d", len(act.Next))
	}
	var sum int64
	seen := map[geom.Vec]bool{}
	for _, e := range act.Next {
		sum += e.Energy(50)
		if seen[e.Pos()] {
			t.Fatalf("two fragments at %v", e.Pos())
		}
		seen[e.Pos()] = true
	}
	if sum != 41 {
		t.Fatalf("fragments carry %d energy, expected 41", sum)
	}
}

func TestCollidingAnnihilatesBelowFloor(t *testing.T) {
	r := testRules(t, 1)
	a := single(r, SeedID(1, 0), 10, geom.V(0), geom.V(1), 1, 2)
	b := single(r, SeedID(1, 1), 10, geom.V(0), geom.V(-1), 1, 3)

	act, err := Evaluate(colliding(10, a, b), 10, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if act.Outcome != OutcomeAnnihilated || len(act.Next) != 0 {
		t.Fatalf("expected annihilation, got %v with %d successors", act.Outcome, len(act.Next))
	}
	if act.Annihilated != 5 {
		t.Fatalf("annihilated %d, expected 5", act.Annihilated)
	}
}

func TestCollidingBouncesOtherwise(t *testing.T) {
	r := testRules(t, 1)
	a := single(r, SeedID(1, 0), 10, geom.V(0), geom.V(1), 2, 6)
	b := single(r, SeedID(1, 1), 10, geom.V(0), geom.V(-1), 3, 6)

	act, err := Evaluate(colliding(10, a, b), 10, r)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if act.Outcome != OutcomeBounced || len(act.Next) != 2 {
		t.Fatalf("expected bounce, got %v", act.Outcome)
	}
	for _, e := range act.Next {
		s := e.(Single)
		var orig Single
		switch s.ID {
		case a.ID:
			orig = a
		case b.ID:
			orig = b
		default:
			t.Fatalf("bounce must keep constituent identities, got %s", s.ID)
		}
		if s.Momentum.Direction != orig.Momentum.Direction.Neg() {
			t.Fatalf("expected reversed direction for %s", s.ID)
		}
		if s.Position != geom.V(0).Add(s.Momentum.Direction) {
			t.Fatalf("bounced entity at %v, expected one step away", s.Position)
		}
		if s.Energy(10) != 6 {
			t.Fatalf("bounce must keep energy, got %d", s.Energy(10))
		}
	}
}

func TestCollidingWaitsForConstituents(t *testing.T) {
	r := testRules(t, 1)
	a := single(r, SeedID(1, 0), 10, geom.V(0), geom.V(1), 2, 6)
	b := single(r, SeedID(1, 1), 10, geom.V(0), geom.V(-1), 3, 6)
	c := colliding(10, a, b)
	c.Constituents[1].NextAction = 13

	if c.Ready() != 13 {
		t.Fatalf("ready at %d, expected 13", c.Ready())
	}
	for tick := int64(10); tick < 13; tick++ {
		act, err := Evaluate(c, tick, r)
		if err != nil {
			t.Fatalf("evaluate at %d: %v", tick, err)
		}
		if act.Kind != ActionWait {
			t.Fatalf("tick %d: expected wait until every constituent is due, got %v", tick, act.Outcome)
		}
	}
	act, err := Evaluate(c, 13, r)
	if err != nil {
		t.Fatalf("evaluate at 13: %v", err)
	}
	if act.Outcome != OutcomeBounced {
		t.Fatalf("expected bounce once due, got %v", act.Outcome)
	}
}

func TestCollidingRejectsMalformedConstituent(t *testing.T) {
	r := testRules(t, 1)
	a := single(r, SeedID(1, 0), 10, geom.V(0), geom.V(1), 1, 2)
	b := single(r, SeedID(1, 1), 10, geom.V(0), geom.V(-1), 1, 3)
	b.Momentum.Cost = -1
	if _, err := Evaluate(colliding(10, a, b), 10, r); !errors.Is(err, ErrUnclassifiable) {
		t.Fatalf("expected ErrUnclassifiable, got %v", err)
	}
}

func TestDerivedIdentitiesAreStable(t *testing.T) {
	p := SeedID(42, 0)
	if p != SeedID(42, 0) {
		t.Fatal("seed ids must be reproducible")
	}
	if ChildID(p, 3, 0) == ChildID(p, 3, 1) || ChildID(p, 3, 0) == ChildID(p, 4, 0) {
		t.Fatal("child ids must differ by tick and index")
	}
	if MergeID(p, 3) == CollisionID(p, 3) {
		t.Fatal("merge and collision ids must not clash")
	}
}
