// Package export writes committed snapshots to durable sinks.
package export

import (
	"context"
	"time"

	"tickframe/internal/core"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/registry"
	"tickframe/pkg/geom"
)

// Record is the exported form of one entity at one tick.
type Record struct {
	Tick         int64   `json:"tick"`
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Position     []int64 `json:"position"`
	Generation   int     `json:"generation"`
	Direction    []int64 `json:"direction"`
	Cost         int64   `json:"cost"`
	Energy       int64   `json:"energy"`
	Constituents int     `json:"constituents,omitempty"`
}

// Summary is the per-tick aggregate written next to the records.
type Summary struct {
	Tick        int64 `json:"tick"`
	Entities    int   `json:"entities"`
	Energy      int64 `json:"energy"`
	Annihilated int64 `json:"annihilated"`
	Dissipated  int64 `json:"dissipated"`
	Collisions  int64 `json:"collisions"`
	Births      int64 `json:"births"`
}

// RunMeta identifies a run in a sink.
type RunMeta struct {
	Name    string
	Started time.Time
	Params  core.ParameterSnapshot
}

// Sink receives a run's metadata once and then snapshots in tick order.
type Sink interface {
	Begin(ctx context.Context, meta RunMeta) error
	Write(ctx context.Context, sum Summary, records []Record) error
	Close() error
}

// Records converts a snapshot into records ordered by position. Colliding
// entities report their combined momentum and highest generation.
func Records(snap *registry.Snapshot, offsets []geom.Offset) []Record {
	tick := snap.Tick()
	entities := snap.Entities()
	out := make([]Record, 0, len(entities))
	for _, e := range entities {
		rec := Record{
			Tick:     tick,
			ID:       e.Ident().String(),
			Kind:     entity.Kind(e),
			Position: e.Pos().Coords(),
			Energy:   e.Energy(tick),
		}
		switch v := e.(type) {
		case entity.Single:
			rec.Generation = v.Generation
			rec.Direction = v.Momentum.Direction.Coords()
			rec.Cost = v.Momentum.Cost
		case entity.Colliding:
			m := entity.Combine(offsets, v.Constituents, tick)
			for _, s := range v.Constituents {
				rec.Generation = max(rec.Generation, s.Generation)
			}
			rec.Direction = m.Direction.Coords()
			rec.Cost = m.Cost
			rec.Constituents = len(v.Constituents)
		}
		out = append(out, rec)
	}
	return out
}

// Summarize builds the aggregate for snap.
func Summarize(snap *registry.Snapshot, l engine.Ledger) Summary {
	return Summary{
		Tick:        snap.Tick(),
		Entities:    snap.Len(),
		Energy:      snap.Energy(),
		Annihilated: l.Annihilated,
		Dissipated:  l.Dissipated,
		Collisions:  l.Collisions,
		Births:      l.Births,
	}
}
