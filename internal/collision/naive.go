package collision

import (
	"tickframe/internal/entity"
	"tickframe/pkg/geom"
)

// Naive merges co-located Singles on the spot: two entities with energies E1
// and E2 become one entity of energy E1+E2-MergeCost, or vanish when that is
// not positive. Larger groups fold pairwise in identity order; after an
// annihilation the next constituent starts a fresh accumulator.
type Naive struct {
	Rules     *entity.Rules
	MergeCost int64
}

func (n *Naive) Name() string { return "naive" }

func (n *Naive) Resolve(tick int64, at geom.Vec, group []entity.Entity) (Resolution, error) {
	parts, err := constituents(group)
	if err != nil {
		return Resolution{}, err
	}

	var res Resolution
	var acc *entity.Single
	for _, p := range parts {
		if acc == nil {
			acc = &p
			continue
		}
		combined := acc.Energy(tick) + p.Energy(tick)
		merged := combined - n.MergeCost
		if merged <= 0 {
			res.Annihilated += combined
			acc = nil
			continue
		}
		next := n.Rules.Merge(entity.MergeID(acc.ID, tick), tick, at, []entity.Single{*acc, p}, merged)
		res.Dissipated += n.MergeCost
		acc = &next
	}

	if acc == nil {
		res.Outcome = entity.OutcomeAnnihilated
		return res, nil
	}
	res.Outcome = entity.OutcomeMerged
	res.Survivors = []entity.Entity{*acc}
	return res, nil
}
