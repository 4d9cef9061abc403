// Package sim turns a configuration into a runnable world.
package sim

import (
	"fmt"

	"tickframe/internal/collision"
	"tickframe/internal/config"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/fault"
	"tickframe/internal/registry"
	"tickframe/pkg/core"
	"tickframe/pkg/geom"
)

// Rules builds the world constants described by cfg.
func Rules(cfg config.Config) (*entity.Rules, error) {
	energy, err := entity.EnergyPolicyByName(cfg.EnergyPolicy)
	if err != nil {
		return nil, err
	}
	cost := entity.DefaultCost{Base: cfg.CostBase, PerGeneration: cfg.CostPerGeneration, Reverse: cfg.CostReverse}
	r, err := entity.NewRules(cfg.Dim, cfg.Radius, cost.Cost, energy)
	if err != nil {
		return nil, err
	}
	r.DivisionThreshold = cfg.DivisionThreshold
	r.ExplosionThreshold = cfg.ExplosionThreshold
	r.AnnihilationFloor = cfg.AnnihilationFloor
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Seeds places the configured seed and any scattered extra seeds at tick 0.
// Extra seeds landing on an occupied position are skipped.
func Seeds(cfg config.Config, r *entity.Rules) ([]entity.Entity, error) {
	pos, err := vecOrOrigin(cfg.SeedPosition, cfg.Dim)
	if err != nil {
		return nil, fmt.Errorf("seed position: %w", err)
	}
	dir, err := vecOrOrigin(cfg.SeedDirection, cfg.Dim)
	if err != nil {
		return nil, fmt.Errorf("seed direction: %w", err)
	}

	first := r.Spawn(entity.SeedID(cfg.Seed, 0), 0, pos, 0, entity.Momentum{Direction: dir, Cost: cfg.SeedCost}, cfg.SeedEnergy)
	if len(cfg.ChildThresholds) > 0 {
		if len(cfg.ChildThresholds) != len(r.Offsets) {
			return nil, fmt.Errorf("%d child thresholds for %d offsets", len(cfg.ChildThresholds), len(r.Offsets))
		}
		costs := make([]entity.ChildCost, len(r.Offsets))
		for i, off := range r.Offsets {
			costs[i] = entity.ChildCost{Dir: off.Dir, Cost: cfg.ChildThresholds[i]}
		}
		first.ChildCosts = costs
	}

	seeds := []entity.Entity{first}
	occupied := map[geom.Vec]bool{pos: true}
	rng := core.NewRNG(cfg.Seed)
	spread := int64(cfg.SeedSpread)
	rest := entity.Momentum{Direction: geom.Origin(cfg.Dim), Cost: 1}
	for i := 1; i <= cfg.ExtraSeeds; i++ {
		coords := make([]int64, cfg.Dim)
		for k := range coords {
			coords[k] = rng.Between(-spread, spread)
		}
		off := r.Offsets[rng.IntN(len(r.Offsets))]
		at := geom.V(coords...)
		if occupied[at] {
			continue
		}
		occupied[at] = true
		m := entity.Momentum{Direction: off.Dir, Cost: r.Cost(rest, off, 0)}
		seeds = append(seeds, r.Spawn(entity.SeedID(cfg.Seed, i), 0, at, 0, m, cfg.SeedEnergy))
	}
	return seeds, nil
}

func vecOrOrigin(coords []int64, dim int) (geom.Vec, error) {
	if len(coords) == 0 {
		return geom.Origin(dim), nil
	}
	if len(coords) != dim {
		return geom.Vec{}, fmt.Errorf("%w: %d coordinates for dimension %d", geom.ErrDimension, len(coords), dim)
	}
	return geom.Make(coords)
}

// Build validates cfg and assembles a scheduler over the seeded world. base
// carries what the configuration does not: observers, logging, tracing and
// the evaluator.
func Build(cfg config.Config, base engine.Options) (*engine.Scheduler, *entity.Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	r, err := Rules(cfg)
	if err != nil {
		return nil, nil, fault.Wrap(fault.Config, -1, "rules", err)
	}
	seeds, err := Seeds(cfg, r)
	if err != nil {
		return nil, nil, fault.Wrap(fault.Config, -1, "seeds", err)
	}
	snap, err := registry.NewSnapshot(0, seeds)
	if err != nil {
		return nil, nil, fault.Wrap(fault.Config, -1, "seeds", err)
	}
	res, err := collision.New(cfg.Policy, r, collision.Params{MergeCost: cfg.MergeCost})
	if err != nil {
		return nil, nil, fault.Wrap(fault.Config, -1, "policy", err)
	}
	mode, _ := engine.ParseFailureMode(cfg.FailureMode)

	opts := base
	opts.Rules = r
	opts.Resolver = res
	opts.Workers = cfg.Workers
	opts.FailureMode = mode
	opts.MaxTicks = cfg.MaxTicks
	opts.TimeLimit = cfg.TimeLimit
	opts.TickTimeout = cfg.TickTimeout
	opts.TickRetries = cfg.TickRetries
	if opts.TPS == 0 {
		opts.TPS = cfg.TPS
	}
	s, err := engine.New(snap, opts)
	if err != nil {
		return nil, nil, err
	}
	return s, r, nil
}
