package engine

import (
	"maps"
	"sync"

	"tickframe/internal/entity"
	"tickframe/internal/registry"
)

// Ledger is the global bookkeeping of a run. Energy leaves the system only
// through annihilation and merge cost; both are tallied here.
type Ledger struct {
	Ticks       int64
	Annihilated int64
	Dissipated  int64
	Births      int64
	Collisions  int64
	// Contained counts evaluation faults absorbed in fail-soft mode.
	Contained int64
	Outcomes  map[entity.Outcome]int64
}

func (l Ledger) clone() Ledger {
	l.Outcomes = maps.Clone(l.Outcomes)
	if l.Outcomes == nil {
		l.Outcomes = map[entity.Outcome]int64{}
	}
	return l
}

// tally collects one tick's bookkeeping from concurrent evaluations. It is
// folded into the ledger only when the tick commits.
type tally struct {
	mu          sync.Mutex
	annihilated int64
	births      int64
	contained   int64
	outcomes    map[entity.Outcome]int64
}

func newTally() *tally { return &tally{outcomes: map[entity.Outcome]int64{}} }

func (t *tally) action(a entity.Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[a.Outcome]++
	t.annihilated += a.Annihilated
	if a.Outcome == entity.OutcomeDivided || a.Outcome == entity.OutcomeExploded {
		t.births += int64(len(a.Next))
	}
}

func (t *tally) contain() {
	t.mu.Lock()
	t.contained++
	t.mu.Unlock()
}

func (l *Ledger) fold(t *tally, c registry.CommitStats) {
	if l.Outcomes == nil {
		l.Outcomes = map[entity.Outcome]int64{}
	}
	l.Ticks++
	l.Annihilated += t.annihilated + c.Annihilated
	l.Dissipated += c.Dissipated
	l.Births += t.births
	l.Contained += t.contained
	l.Collisions += int64(c.Collisions)
	for o, n := range t.outcomes {
		l.Outcomes[o] += n
	}
	for o, n := range c.Outcomes {
		l.Outcomes[o] += int64(n)
	}
}
