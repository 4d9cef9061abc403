package collision

import (
	"errors"
	"slices"
	"testing"

	"tickframe/internal/entity"
	"tickframe/pkg/geom"
)

func rules(t *testing.T) *entity.Rules {
	t.Helper()
	r, err := entity.NewRules(1, 1, nil, nil)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	r.DivisionThreshold = 50
	r.ExplosionThreshold = 100
	r.AnnihilationFloor = 4
	return r
}

// body returns an entity at P=(0) carrying energy at tick.
func body(r *entity.Rules, index int, tick int64, dir geom.Vec, cost, energy int64) entity.Single {
	return r.Spawn(entity.SeedID(9, index), tick, geom.V(0), 0, entity.Momentum{Direction: dir, Cost: cost}, energy)
}

func TestNaiveHeadOnMerge(t *testing.T) {
	r := rules(t)
	const tick = 30
	a := body(r, 0, tick, geom.V(1), 3, 10)
	b := body(r, 1, tick, geom.V(-1), 3, 8)

	res, err := (&Naive{Rules: r, MergeCost: 5}).Resolve(tick, geom.V(0), []entity.Entity{a, b})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Outcome != entity.OutcomeMerged || len(res.Survivors) != 1 {
		t.Fatalf("expected one merged survivor, got %v with %d", res.Outcome, len(res.Survivors))
	}
	m := res.Survivors[0].(entity.Single)
	if got := m.Energy(tick); got != 13 {
		t.Fatalf("merged energy %d, expected 13", got)
	}
	if m.Position != geom.V(0) {
		t.Fatalf("merged entity at %v, expected the collision position", m.Position)
	}
	if m.Momentum.Direction != geom.V(1) {
		t.Fatalf("merged direction %v, expected +x (10 vs 8 weighting)", m.Momentum.Direction)
	}
	if res.Dissipated != 5 || res.Annihilated != 0 {
		t.Fatalf("ledger dissipated=%d annihilated=%d, expected 5 and 0", res.Dissipated, res.Annihilated)
	}
}

func TestNaiveAnnihilation(t *testing.T) {
	r := rules(t)
	const tick = 30
	a := body(r, 0, tick, geom.V(1), 3, 10)
	b := body(r, 1, tick, geom.V(-1), 3, 8)

	res, err := (&Naive{Rules: r, MergeCost: 20}).Resolve(tick, geom.V(0), []entity.Entity{a, b})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Survivors) != 0 || res.Outcome != entity.OutcomeAnnihilated {
		t.Fatalf("expected annihilation, got %v with %d survivors", res.Outcome, len(res.Survivors))
	}
	if res.Annihilated != 18 {
		t.Fatalf("annihilated %d, expected 18", res.Annihilated)
	}
}

func TestNaiveConservesEnergy(t *testing.T) {
	r := rules(t)
	const tick = 100
	for e1 := int64(0); e1 < 12; e1++ {
		for e2 := int64(0); e2 < 12; e2++ {
			for _, c := range []int64{0, 3, 11} {
				a := body(r, 0, tick, geom.V(1), 2, e1)
				b := body(r, 1, tick, geom.V(-1), 2, e2)
				res, err := (&Naive{Rules: r, MergeCost: c}).Resolve(tick, geom.V(0), []entity.Entity{a, b})
				if err != nil {
					t.Fatalf("resolve: %v", err)
				}
				if e1+e2-c > 0 {
					if len(res.Survivors) != 1 || res.Survivors[0].Energy(tick) != e1+e2-c {
						t.Fatalf("E1=%d E2=%d C=%d: expected survivor with %d", e1, e2, c, e1+e2-c)
					}
					continue
				}
				if len(res.Survivors) != 0 || res.Annihilated != e1+e2 {
					t.Fatalf("E1=%d E2=%d C=%d: expected annihilation of %d, got %+v", e1, e2, c, e1+e2, res)
				}
			}
		}
	}
}

func TestResolutionIgnoresArrivalOrder(t *testing.T) {
	r := rules(t)
	const tick = 40
	group := []entity.Entity{
		body(r, 0, tick, geom.V(1), 3, 7),
		body(r, 1, tick, geom.V(-1), 2, 4),
		body(r, 2, tick, geom.V(1), 1, 9),
		body(r, 3, tick, geom.V(-1), 5, 2),
	}
	for _, name := range []string{"naive", "full"} {
		res, err := New(name, r, Params{MergeCost: 3})
		if err != nil {
			t.Fatalf("new %s: %v", name, err)
		}
		base, err := res.Resolve(tick, geom.V(0), group)
		if err != nil {
			t.Fatalf("%s resolve: %v", name, err)
		}
		perm := slices.Clone(group)
		for i := 0; i < 6; i++ {
			perm[i%len(perm)], perm[(i*3+1)%len(perm)] = perm[(i*3+1)%len(perm)], perm[i%len(perm)]
			got, err := res.Resolve(tick, geom.V(0), perm)
			if err != nil {
				t.Fatalf("%s resolve: %v", name, err)
			}
			if !sameResolution(base, got) {
				t.Fatalf("%s resolution depends on arrival order", name)
			}
		}
	}
}

func sameResolution(a, b Resolution) bool {
	if a.Outcome != b.Outcome || a.Annihilated != b.Annihilated || a.Dissipated != b.Dissipated {
		return false
	}
	if len(a.Survivors) != len(b.Survivors) {
		return false
	}
	for i := range a.Survivors {
		if a.Survivors[i].Ident() != b.Survivors[i].Ident() || a.Survivors[i].Energy(0) != b.Survivors[i].Energy(0) {
			return false
		}
	}
	return true
}

func TestFullFormsCollidingAndAbsorbsArrivals(t *testing.T) {
	r := rules(t)
	full := &Full{Rules: r}
	a := body(r, 0, 10, geom.V(1), 3, 5)
	b := body(r, 1, 10, geom.V(-1), 3, 5)

	res, err := full.Resolve(10, geom.V(0), []entity.Entity{b, a})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	c, ok := res.Survivors[0].(entity.Colliding)
	if !ok || len(res.Survivors) != 1 {
		t.Fatalf("expected one Colliding survivor, got %+v", res.Survivors)
	}
	if len(c.Constituents) != 2 || c.Since != 10 {
		t.Fatalf("unexpected colliding %+v", c)
	}

	late := body(r, 2, 11, geom.V(1), 2, 1)
	res, err = full.Resolve(11, geom.V(0), []entity.Entity{late, c})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	joined := res.Survivors[0].(entity.Colliding)
	if joined.ID != c.ID || joined.Since != 10 {
		t.Fatal("arrivals must join the existing collision")
	}
	if len(joined.Constituents) != 3 {
		t.Fatalf("expected 3 constituents, got %d", len(joined.Constituents))
	}
}

func TestMalformedGroupIsUnclassifiable(t *testing.T) {
	r := rules(t)
	a := body(r, 0, 10, geom.V(1), 3, 5)
	b := body(r, 1, 10, geom.V(-1), 3, 5)
	b.Momentum.Cost = 0
	for _, name := range Names() {
		res, _ := New(name, r, Params{})
		if _, err := res.Resolve(10, geom.V(0), []entity.Entity{a, b}); !errors.Is(err, entity.ErrUnclassifiable) {
			t.Fatalf("%s: expected ErrUnclassifiable, got %v", name, err)
		}
	}
}

func TestUnknownPolicy(t *testing.T) {
	if _, err := New("quantum", rules(t), Params{}); err == nil {
		t.Fatal("expected unknown policy error")
	}
	if !slices.Equal(Names(), []string{"full", "naive"}) {
		t.Fatalf("unexpected policies %v", Names())
	}
}
