// Package registry holds the committed position→entity map of a run and the
// staging area for the next tick.
package registry

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"tickframe/internal/entity"
	"tickframe/pkg/geom"
)

// Snapshot is the immutable position→entity mapping valid for one tick.
// A Snapshot is never modified after it is published; Commit builds a new one.
type Snapshot struct {
	tick  int64
	byPos map[geom.Vec]entity.Entity
}

// NewSnapshot builds a snapshot for tick from entities. It fails when two
// entities share a position or an identity.
func NewSnapshot(tick int64, entities []entity.Entity) (*Snapshot, error) {
	s := &Snapshot{tick: tick, byPos: make(map[geom.Vec]entity.Entity, len(entities))}
	ids := make(map[uuid.UUID]struct{}, len(entities))
	for _, e := range entities {
		if _, dup := s.byPos[e.Pos()]; dup {
			return nil, fmt.Errorf("registry: two entities at %v", e.Pos())
		}
		if _, dup := ids[e.Ident()]; dup {
			return nil, fmt.Errorf("registry: identity %s used twice", e.Ident())
		}
		s.byPos[e.Pos()] = e
		ids[e.Ident()] = struct{}{}
	}
	return s, nil
}

// Tick is the tick this snapshot is valid for.
func (s *Snapshot) Tick() int64 { return s.tick }

// Len reports the number of occupied positions.
func (s *Snapshot) Len() int { return len(s.byPos) }

// At returns the entity occupying pos.
func (s *Snapshot) At(pos geom.Vec) (entity.Entity, bool) {
	e, ok := s.byPos[pos]
	return e, ok
}

// Entities returns every entity ordered by position.
func (s *Snapshot) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, len(s.byPos))
	for _, e := range s.byPos {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b entity.Entity) int { return a.Pos().Compare(b.Pos()) })
	return out
}

// Energy returns the total derived energy held by the snapshot.
func (s *Snapshot) Energy() int64 {
	var sum int64
	for _, e := range s.byPos {
		sum += e.Energy(s.tick)
	}
	return sum
}
