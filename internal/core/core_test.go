package core

import (
	"context"
	"testing"
	"time"
)

func TestByteGridPlotAndScroll(t *testing.T) {
	g := NewByteGrid(3, 3)
	if g.Plot(3, 0, 1) || g.Plot(-1, 0, 1) {
		t.Fatal("plot outside the grid must be ignored")
	}
	g.Plot(1, 0, 5)
	g.ScrollDown()
	if g.At(1, 0) != 0 || g.At(1, 1) != 5 {
		t.Fatalf("scroll did not move the row: %v", g.Cells())
	}
	g.ScrollDown()
	g.ScrollDown()
	for _, c := range g.Cells() {
		if c != 0 {
			t.Fatalf("rows should fall off the bottom: %v", g.Cells())
		}
	}
}

func TestFixedStepWait(t *testing.T) {
	fs := NewFixedStep(100)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := fs.Wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if el := time.Since(start); el < 25*time.Millisecond {
		t.Fatalf("4 paced ticks at 100 tps took %s, expected about 30ms", el)
	}
}

func TestFixedStepWaitCanceled(t *testing.T) {
	fs := NewFixedStep(1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := fs.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	cancel()
	if err := fs.Wait(ctx); err == nil {
		t.Fatal("expected cancellation")
	}
}

func TestFixedStepUnpaced(t *testing.T) {
	fs := NewFixedStep(0)
	if !fs.ShouldStep() || fs.Step() != 0 {
		t.Fatal("zero tps should never hold a tick back")
	}
}

func TestParameterLookup(t *testing.T) {
	ps := ParameterSnapshot{Groups: []ParameterGroup{{Name: "a", Params: []Parameter{{Key: "x", Value: "1"}}}}}
	if p, ok := ps.Lookup("x"); !ok || p.Value != "1" {
		t.Fatalf("lookup x = %+v, %v", p, ok)
	}
	if _, ok := ps.Lookup("y"); ok {
		t.Fatal("unexpected parameter y")
	}
}
