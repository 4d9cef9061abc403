package collision

import (
	"bytes"

	"github.com/google/uuid"

	"tickframe/internal/entity"
	"tickframe/pkg/geom"
)

// Full parks a co-located group in a Colliding entity that resolves on its
// next evaluation (merge, explode, annihilate or bounce). Arrivals at a
// position already holding a Colliding entity join it and keep its identity.
type Full struct {
	Rules *entity.Rules
}

func (f *Full) Name() string { return "full" }

func (f *Full) Resolve(tick int64, at geom.Vec, group []entity.Entity) (Resolution, error) {
	parts, err := constituents(group)
	if err != nil {
		return Resolution{}, err
	}

	var id uuid.UUID
	since := tick
	for _, e := range group {
		c, ok := e.(entity.Colliding)
		if !ok {
			continue
		}
		if id == uuid.Nil || bytes.Compare(c.ID[:], id[:]) < 0 {
			id, since = c.ID, c.Since
		}
	}
	if id == uuid.Nil {
		id = entity.CollisionID(parts[0].ID, tick)
	}

	c := entity.Colliding{ID: id, Position: at, Since: since, Constituents: parts}
	return Resolution{Survivors: []entity.Entity{c}, Outcome: entity.OutcomeCollided}, nil
}
