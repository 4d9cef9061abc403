package sim

import (
	"context"

	"tickframe/internal/config"
	"tickframe/internal/core"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/registry"
)

// Cell values written by World. Singles use CellSingle plus their generation,
// capped below CellColliding.
const (
	CellEmpty     uint8 = 0
	CellSingle    uint8 = 1
	CellColliding uint8 = 7
)

// Stats is a viewer-friendly summary of the current state.
type Stats struct {
	Tick     int64
	Entities int
	Energy   int64
	Ledger   engine.Ledger
	Err      error
}

// World adapts a scheduler to core.Sim. Two- and three-dimensional worlds
// show the z=0 plane centred on the origin with y pointing up; a
// one-dimensional world is drawn as a space-time diagram with the newest
// tick on the top row.
type World struct {
	cfg  config.Config
	base engine.Options

	sched *engine.Scheduler
	rules *entity.Rules
	grid  *core.ByteGrid
	err   error
}

// NewWorld builds a world rendered into a w×h raster.
func NewWorld(cfg config.Config, w, h int, base engine.Options) (*World, error) {
	wd := &World{cfg: cfg, base: base, grid: core.NewByteGrid(w, h)}
	if err := wd.build(); err != nil {
		return nil, err
	}
	return wd, nil
}

func (w *World) build() error {
	s, r, err := Build(w.cfg, w.base)
	if err != nil {
		return err
	}
	w.sched, w.rules, w.err = s, r, nil
	w.grid.Clear()
	w.raster(s.Snapshot())
	return nil
}

func (w *World) Name() string { return "tickframe/" + w.cfg.Policy }

func (w *World) Size() core.Size { return core.Size{W: w.grid.W, H: w.grid.H} }

func (w *World) Cells() []uint8 { return w.grid.Cells() }

// Reset rebuilds the world from tick 0 with a new seed.
func (w *World) Reset(seed int64) {
	w.cfg.Seed = seed
	if err := w.build(); err != nil {
		w.err = err
	}
}

// Step advances one tick. After a fault the world stays frozen and Err
// reports it.
func (w *World) Step() {
	if w.err != nil {
		return
	}
	snap, err := w.sched.Step(context.Background())
	if err != nil {
		w.err = err
		return
	}
	w.raster(snap)
}

// Parameters reports the configuration the world was built from.
func (w *World) Parameters() core.ParameterSnapshot { return w.cfg.Parameters() }

// Err returns the fault that froze the world, if any.
func (w *World) Err() error { return w.err }

// Scheduler exposes the underlying scheduler.
func (w *World) Scheduler() *engine.Scheduler { return w.sched }

// Stats summarizes the last committed snapshot.
func (w *World) Stats() Stats {
	snap := w.sched.Snapshot()
	return Stats{Tick: snap.Tick(), Entities: snap.Len(), Energy: snap.Energy(), Ledger: w.sched.Ledger(), Err: w.err}
}

func cellValue(e entity.Entity) uint8 {
	switch v := e.(type) {
	case entity.Single:
		return CellSingle + uint8(min(v.Generation, int(CellColliding-CellSingle-1)))
	case entity.Colliding:
		return CellColliding
	}
	return CellEmpty
}

func (w *World) raster(snap *registry.Snapshot) {
	g := w.grid
	cx, cy := g.W/2, g.H/2
	if w.cfg.Dim == 1 {
		g.ScrollDown()
		for _, e := range snap.Entities() {
			g.Plot(cx+int(e.Pos().At(0)), 0, cellValue(e))
		}
		return
	}
	g.Clear()
	for _, e := range snap.Entities() {
		p := e.Pos()
		if p.Dim() == 3 && p.At(2) != 0 {
			continue
		}
		g.Plot(cx+int(p.At(0)), cy-int(p.At(1)), cellValue(e))
	}
}
