// Package collision resolves groups of entities that target the same position
// in the same tick.
package collision

import (
	"fmt"
	"sort"

	"tickframe/internal/entity"
	"tickframe/pkg/geom"
)

// Resolution is the outcome of resolving one co-located group.
type Resolution struct {
	// Survivors hold at most one entity, placed at the group's position.
	Survivors []entity.Entity
	Outcome   entity.Outcome
	// Annihilated is the energy the group lost outright.
	Annihilated int64
	// Dissipated is the energy consumed as merge cost.
	Dissipated int64
}

// Resolver reduces two or more entities staged at one position to a single
// occupant (or none). Implementations must not depend on the order of group.
type Resolver interface {
	Name() string
	Resolve(tick int64, at geom.Vec, group []entity.Entity) (Resolution, error)
}

// Params carries policy-specific tunables.
type Params struct {
	MergeCost int64
}

// Factory constructs a Resolver for a run.
type Factory func(rules *entity.Rules, p Params) Resolver

var policies = map[string]Factory{}

// Register adds a resolver factory under the provided policy name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	policies[name] = f
}

// New constructs the resolver registered under name.
func New(name string, rules *entity.Rules, p Params) (Resolver, error) {
	f, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("collision: unknown policy %q", name)
	}
	return f(rules, p), nil
}

// Names lists the registered policy names in sorted order.
func Names() []string {
	out := make([]string, 0, len(policies))
	for name := range policies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// constituents flattens group into Singles sorted by identity and rejects
// members a policy cannot reason about.
func constituents(group []entity.Entity) ([]entity.Single, error) {
	parts := entity.Flatten(group)
	for _, p := range parts {
		if p.Momentum.Cost <= 0 {
			return nil, fmt.Errorf("%w: constituent %s has cost %d", entity.ErrUnclassifiable, p.ID, p.Momentum.Cost)
		}
	}
	return parts, nil
}

func init() {
	Register("naive", func(rules *entity.Rules, p Params) Resolver {
		return &Naive{Rules: rules, MergeCost: p.MergeCost}
	})
	Register("full", func(rules *entity.Rules, _ Params) Resolver {
		return &Full{Rules: rules}
	})
}
