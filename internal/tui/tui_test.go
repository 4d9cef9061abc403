package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/sim"

	"github.com/gdamore/tcell/v2"
)

func newViewer(t *testing.T) (*Viewer, *sim.World, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 12)

	cfg := config.Default()
	cfg.SeedDirection = []int64{1, 0}
	w, err := sim.NewWorld(cfg, 40, 11, engine.Options{Logf: func(string, ...any) {}})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return New(screen, w, cfg.Seed, 0), w, screen
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestDrawPlacesSeedAndStatus(t *testing.T) {
	v, _, screen := newViewer(t)
	v.Draw()
	if r, _, _, _ := screen.GetContent(20, 5); r != 'o' {
		t.Fatalf("expected the seed at (20,5), got %q", r)
	}
	if got := rowText(screen, 11); !strings.HasPrefix(got, "tick 0  entities 1") {
		t.Fatalf("status line %q", got)
	}
}

func TestKeysStepPauseAndReset(t *testing.T) {
	v, w, screen := newViewer(t)
	for i := 0; i < 2; i++ {
		if v.Handle(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)) {
			t.Fatal("step key should not quit")
		}
	}
	v.Handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	v.Draw()
	if st := w.Stats(); st.Tick != 2 {
		t.Fatalf("expected tick 2, got %d", st.Tick)
	}
	if r, _, _, _ := screen.GetContent(21, 5); r != 'o' {
		t.Fatalf("seed should have moved to (21,5), got %q", r)
	}
	if got := rowText(screen, 11); !strings.Contains(got, "[paused]") {
		t.Fatalf("status line %q", got)
	}
	v.Handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if st := w.Stats(); st.Tick != 0 {
		t.Fatalf("reset should return to tick 0, got %d", st.Tick)
	}
	if !v.Handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q should quit")
	}
	if !v.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("escape should quit")
	}
}

func TestRunStepsUntilQuit(t *testing.T) {
	v, w, screen := newViewer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	time.Sleep(150 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("viewer did not quit")
	}
	if w.Stats().Tick == 0 {
		t.Fatal("unpaced viewer should have stepped at least once")
	}
}

func TestGlyphs(t *testing.T) {
	cases := map[uint8]rune{sim.CellEmpty: ' ', sim.CellSingle: 'o', sim.CellSingle + 2: '2', sim.CellColliding: '*'}
	for c, want := range cases {
		if got := glyph(c); got != want {
			t.Fatalf("glyph(%d) = %q, want %q", c, got, want)
		}
	}
}
