package export

import (
	"context"
	"errors"
	"fmt"

	"tickframe/internal/engine"
	"tickframe/internal/registry"
	"tickframe/pkg/geom"
)

// Exporter is an engine observer that writes every Interval-th committed
// snapshot to its sinks. Tick 0 is always written.
type Exporter struct {
	sinks    []Sink
	interval int64
	offsets  []geom.Offset
	last     int64
}

// NewExporter writes to sinks every interval ticks. Offsets are used to
// report the combined momentum of colliding entities.
func NewExporter(interval int64, offsets []geom.Offset, sinks ...Sink) (*Exporter, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("export interval must be positive, got %d", interval)
	}
	if len(sinks) == 0 {
		return nil, errors.New("at least one sink is required")
	}
	return &Exporter{sinks: sinks, interval: interval, offsets: offsets, last: -1}, nil
}

// Begin announces the run to every sink.
func (x *Exporter) Begin(ctx context.Context, meta RunMeta) error {
	for _, s := range x.sinks {
		if err := s.Begin(ctx, meta); err != nil {
			return err
		}
	}
	return nil
}

// Observe implements engine.Observer.
func (x *Exporter) Observe(ctx context.Context, snap *registry.Snapshot, l engine.Ledger) error {
	if snap.Tick()%x.interval != 0 {
		return nil
	}
	return x.write(ctx, snap, l)
}

// Final writes snap unless it was already exported, so the last state of a
// run is always present.
func (x *Exporter) Final(ctx context.Context, snap *registry.Snapshot, l engine.Ledger) error {
	if snap.Tick() == x.last {
		return nil
	}
	return x.write(ctx, snap, l)
}

func (x *Exporter) write(ctx context.Context, snap *registry.Snapshot, l engine.Ledger) error {
	sum := Summarize(snap, l)
	recs := Records(snap, x.offsets)
	for _, s := range x.sinks {
		if err := s.Write(ctx, sum, recs); err != nil {
			return fmt.Errorf("export tick %d: %w", snap.Tick(), err)
		}
	}
	x.last = snap.Tick()
	return nil
}

// Close closes every sink and joins their errors.
func (x *Exporter) Close() error {
	var errs []error
	for _, s := range x.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
