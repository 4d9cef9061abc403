package ui

import (
	"errors"
	"strings"
	"testing"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/sim"
)

func TestStatusLine(t *testing.T) {
	st := sim.Stats{Tick: 12, Entities: 3, Energy: 40}
	if got := StatusLine(st, false); got != "tick 12  entities 3  energy 40" {
		t.Fatalf("status %q", got)
	}
	st.Err = errors.New("boom")
	got := StatusLine(st, true)
	if !strings.Contains(got, "[paused]") || !strings.HasSuffix(got, "HALTED: boom") {
		t.Fatalf("status %q", got)
	}
}

func TestLedgerLinesOrdersOutcomes(t *testing.T) {
	st := sim.Stats{Ledger: engine.Ledger{
		Collisions: 2,
		Outcomes:   map[entity.Outcome]int64{entity.OutcomeMoved: 5, entity.OutcomeDivided: 1, entity.OutcomeMerged: 2},
	}}
	lines := LedgerLines(st)
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %q", lines)
	}
	if !strings.HasPrefix(lines[4], "divided") || !strings.HasPrefix(lines[6], "moved") {
		t.Fatalf("outcomes out of order: %q", lines[4:])
	}
	st.Ledger.Contained = 1
	if got := LedgerLines(st); !strings.HasPrefix(got[4], "contained") {
		t.Fatalf("contained line missing: %q", got)
	}
}

func TestParameterLines(t *testing.T) {
	lines := ParameterLines(config.Default().Parameters())
	if lines[0] != "world" || lines[1] != "  dim = 2" {
		t.Fatalf("unexpected head %q", lines[:2])
	}
	var found bool
	for _, l := range lines {
		if l == "  policy = naive" {
			found = true
		}
	}
	if !found {
		t.Fatal("policy missing from parameter lines")
	}
}
