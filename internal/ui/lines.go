// Package ui formats world state for the viewers.
package ui

import (
	"fmt"
	"slices"
	"strings"

	"tickframe/internal/core"
	"tickframe/internal/entity"
	"tickframe/internal/sim"
)

// StatusLine is the one-line summary shown over the world.
func StatusLine(st sim.Stats, paused bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d  entities %d  energy %d", st.Tick, st.Entities, st.Energy)
	if paused {
		b.WriteString("  [paused]")
	}
	if st.Err != nil {
		fmt.Fprintf(&b, "  HALTED: %v", st.Err)
	}
	return b.String()
}

// LedgerLines lists the cumulative counters, outcomes in a stable order.
func LedgerLines(st sim.Stats) []string {
	l := st.Ledger
	lines := []string{
		fmt.Sprintf("collisions  %d", l.Collisions),
		fmt.Sprintf("births      %d", l.Births),
		fmt.Sprintf("annihilated %d", l.Annihilated),
		fmt.Sprintf("dissipated  %d", l.Dissipated),
	}
	if l.Contained > 0 {
		lines = append(lines, fmt.Sprintf("contained   %d", l.Contained))
	}
	outcomes := make([]entity.Outcome, 0, len(l.Outcomes))
	for o := range l.Outcomes {
		outcomes = append(outcomes, o)
	}
	slices.SortFunc(outcomes, func(a, b entity.Outcome) int { return strings.Compare(a.String(), b.String()) })
	for _, o := range outcomes {
		lines = append(lines, fmt.Sprintf("%-11s %d", o, l.Outcomes[o]))
	}
	return lines
}

// ParameterLines renders a parameter snapshot as indented group listings.
func ParameterLines(ps core.ParameterSnapshot) []string {
	var lines []string
	for _, g := range ps.Groups {
		lines = append(lines, g.Name)
		for _, p := range g.Params {
			lines = append(lines, fmt.Sprintf("  %s = %s", p.Key, p.Value))
		}
	}
	return lines
}
