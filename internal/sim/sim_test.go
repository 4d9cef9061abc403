package sim

import (
	"context"
	"testing"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/fault"
	"tickframe/pkg/geom"
)

var quiet = engine.Options{Logf: func(string, ...any) {}}

func TestBuildDefaults(t *testing.T) {
	s, r, err := Build(config.Default(), quiet)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if r.Dim != 2 || len(r.Offsets) != 4 {
		t.Fatalf("unexpected rules dim=%d offsets=%d", r.Dim, len(r.Offsets))
	}
	snap := s.Snapshot()
	if snap.Tick() != 0 || snap.Len() != 1 {
		t.Fatalf("expected one seed at tick 0, got %d at %d", snap.Len(), snap.Tick())
	}
	if _, ok := snap.At(geom.Origin(2)); !ok {
		t.Fatal("seed should start at the origin")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Dim = 0
	if _, _, err := Build(cfg, quiet); fault.KindOf(err) != fault.Config {
		t.Fatalf("expected config fault, got %v", err)
	}
}

func TestScatterSeedsDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.ExtraSeeds = 25
	cfg.SeedSpread = 3
	r, err := Rules(cfg)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	a, err := Seeds(cfg, r)
	if err != nil {
		t.Fatalf("seeds: %v", err)
	}
	b, _ := Seeds(cfg, r)
	if len(a) != len(b) || len(a) < 2 {
		t.Fatalf("expected matching scatter, got %d and %d seeds", len(a), len(b))
	}
	seen := map[geom.Vec]bool{}
	for i := range a {
		if a[i].Ident() != b[i].Ident() || a[i].Pos() != b[i].Pos() {
			t.Fatalf("seed %d differs between runs", i)
		}
		if seen[a[i].Pos()] {
			t.Fatalf("two seeds at %v", a[i].Pos())
		}
		seen[a[i].Pos()] = true
		if p := a[i].Pos(); p.At(0) < -3 || p.At(0) > 3 {
			t.Fatalf("seed %v outside the spread", p)
		}
	}
}

func TestDivisionFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Dim = 1
	cfg.DivisionThreshold = 5
	cfg.ChildThresholds = []int64{2, 2}
	s, _, err := Build(cfg, quiet)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	snap := s.Snapshot()
	if snap.Len() != 2 {
		t.Fatalf("expected two children, got %d", snap.Len())
	}
	for _, e := range snap.Entities() {
		c := e.(entity.Single)
		if c.Generation != 1 || c.Energy(5) != 0 {
			t.Fatalf("unexpected child %+v", c)
		}
	}
}

func TestWorldRasterPlane(t *testing.T) {
	cfg := config.Default()
	cfg.SeedPosition = []int64{3, 2}
	w, err := NewWorld(cfg, 11, 11, quiet)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if got := w.grid.At(8, 3); got != CellSingle {
		t.Fatalf("cell (8,3) = %d, expected the seed", got)
	}
	var lit int
	for _, c := range w.Cells() {
		if c != CellEmpty {
			lit++
		}
	}
	if lit != 1 {
		t.Fatalf("expected exactly one lit cell, got %d", lit)
	}
	if w.Name() != "tickframe/naive" || w.Size().W != 11 {
		t.Fatalf("unexpected world %s %+v", w.Name(), w.Size())
	}
}

func TestWorldLineHistory(t *testing.T) {
	cfg := config.Default()
	cfg.Dim = 1
	cfg.SeedDirection = []int64{1}
	w, err := NewWorld(cfg, 21, 8, quiet)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.Step()
	w.Step()
	if w.Err() != nil {
		t.Fatalf("step: %v", w.Err())
	}
	checks := []struct{ x, y int }{{11, 0}, {10, 1}, {10, 2}}
	for _, c := range checks {
		if w.grid.At(c.x, c.y) == CellEmpty {
			t.Fatalf("expected a trail at (%d,%d)", c.x, c.y)
		}
	}
	if w.grid.At(10, 0) != CellEmpty {
		t.Fatal("newest row should only show the current position")
	}
	if st := w.Stats(); st.Tick != 2 || st.Entities != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestWorldReset(t *testing.T) {
	cfg := config.Default()
	cfg.ExtraSeeds = 5
	w, err := NewWorld(cfg, 32, 32, quiet)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.Step()
	w.Reset(99)
	if st := w.Stats(); st.Tick != 0 || st.Err != nil {
		t.Fatalf("reset should restart at tick 0, got %+v", st)
	}
}
