// Package sweep runs many independent worlds over a parameter grid.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/sim"
)

// Case is one point of the grid.
type Case struct {
	Policy    string
	MergeCost int64
	Division  int64
}

func (c Case) String() string {
	return fmt.Sprintf("policy=%s merge=%d division=%d", c.Policy, c.MergeCost, c.Division)
}

// Apply writes the case into cfg.
func (c Case) Apply(cfg *config.Config) {
	cfg.Policy = c.Policy
	cfg.MergeCost = c.MergeCost
	cfg.DivisionThreshold = c.Division
}

// Grid is the cross product of the swept values.
type Grid struct {
	Policies   []string
	MergeCosts []int64
	Divisions  []int64
}

// Cases enumerates the grid in a stable order.
func (g Grid) Cases() []Case {
	var out []Case
	for _, p := range g.Policies {
		for _, m := range g.MergeCosts {
			for _, d := range g.Divisions {
				out = append(out, Case{Policy: p, MergeCost: m, Division: d})
			}
		}
	}
	return out
}

// Outcome is the result of one case.
type Outcome struct {
	Case   Case
	Result engine.Result
	Err    error
}

// Run executes every case against base with a pool of workers and returns
// the outcomes in case order. Each world runs single-threaded.
func Run(ctx context.Context, base config.Config, cases []Case, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	type job struct {
		idx int
		c   Case
	}
	type done struct {
		idx int
		out Outcome
	}

	jobs := make(chan job)
	results := make(chan done)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- done{idx: j.idx, out: runCase(ctx, base, j.c)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for i, c := range cases {
			select {
			case jobs <- job{idx: i, c: c}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]Outcome, len(cases))
	seen := make([]bool, len(cases))
	for d := range results {
		out[d.idx] = d.out
		seen[d.idx] = true
	}
	for i := range out {
		if !seen[i] {
			out[i] = Outcome{Case: cases[i], Err: ctx.Err()}
		}
	}
	return out
}

func runCase(ctx context.Context, base config.Config, c Case) Outcome {
	cfg := base
	c.Apply(&cfg)
	cfg.Workers = 1
	s, _, err := sim.Build(cfg, engine.Options{Logf: func(string, ...any) {}})
	if err != nil {
		return Outcome{Case: c, Err: err}
	}
	res, err := s.Run(ctx)
	return Outcome{Case: c, Result: res, Err: err}
}

// Rank orders outcomes by final population, largest first, with the case
// order breaking ties. Failed cases sort last.
func Rank(outs []Outcome) []Outcome {
	ranked := append([]Outcome(nil), outs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		return a.Result.Entities > b.Result.Entities
	})
	return ranked
}
