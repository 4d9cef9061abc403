// Package engine drives a run: every tick it evaluates all entities of the
// committed snapshot in parallel, stages their successors and commits the
// next snapshot behind a single barrier.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tickframe/internal/entity"
	"tickframe/internal/fault"
	"tickframe/internal/registry"
)

// ErrStopped is returned by Step once the scheduler reached Stopped.
var ErrStopped = errors.New("engine: scheduler stopped")

// Scheduler advances a registry one tick at a time.
type Scheduler struct {
	opts   Options
	reg    *registry.Registry
	tracer trace.Tracer

	state   atomic.Int32
	stop    atomic.Bool
	running atomic.Bool

	// step serializes Step calls.
	step     sync.Mutex
	observed bool

	mu     sync.Mutex
	ledger Ledger
}

// New builds a scheduler over initial. Invalid options are configuration
// faults.
func New(initial *registry.Snapshot, opts Options) (*Scheduler, error) {
	if err := opts.normalize(); err != nil {
		return nil, fault.Wrap(fault.Config, -1, "scheduler options", err)
	}
	if initial == nil {
		return nil, fault.New(fault.Config, -1, "initial snapshot is required")
	}
	for _, e := range initial.Entities() {
		if e.Pos().Dim() != opts.Rules.Dim {
			return nil, &fault.Error{Kind: fault.Config, Tick: -1, Entity: e.Ident(),
				Message: fmt.Sprintf("seed at %v does not match dimension %d", e.Pos(), opts.Rules.Dim)}
		}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("tickframe/engine")
	}
	return &Scheduler{
		opts:   opts,
		reg:    registry.New(initial, opts.Resolver),
		tracer: tracer,
		ledger: Ledger{Outcomes: map[entity.Outcome]int64{}},
	}, nil
}

// State reports the current scheduler state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

func (s *Scheduler) setState(st State) { s.state.Store(int32(st)) }

// Snapshot returns the last committed snapshot.
func (s *Scheduler) Snapshot() *registry.Snapshot { return s.reg.Snapshot() }

// Ledger returns a copy of the run's bookkeeping.
func (s *Scheduler) Ledger() Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.clone()
}

// Stop asks the run to end at the next tick boundary. A tick in progress
// still commits; later Step calls return ErrStopped.
func (s *Scheduler) Stop() { s.stop.Store(true) }

// Step runs exactly one tick, retrying it after a tick timeout as configured,
// and returns the snapshot it committed. On error nothing was committed.
func (s *Scheduler) Step(ctx context.Context) (*registry.Snapshot, error) {
	s.step.Lock()
	defer s.step.Unlock()
	if s.stop.Load() {
		s.setState(Stopped)
	}
	if s.State() == Stopped {
		return nil, ErrStopped
	}
	if err := s.observeInitial(ctx); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		snap, err := s.tick(ctx, attempt)
		if err == nil {
			return snap, nil
		}
		if fault.KindOf(err) != fault.Timeout || attempt > s.opts.TickRetries || ctx.Err() != nil {
			return nil, err
		}
		s.opts.Logf("engine: %v; retry %d of %d", err, attempt, s.opts.TickRetries)
	}
}

func (s *Scheduler) observeInitial(ctx context.Context) error {
	if s.observed {
		return nil
	}
	s.observed = true
	return s.notify(ctx, s.reg.Snapshot(), s.Ledger())
}

func (s *Scheduler) notify(ctx context.Context, snap *registry.Snapshot, l Ledger) error {
	for _, o := range s.opts.Observers {
		if err := o.Observe(ctx, snap, l); err != nil {
			return fault.Wrap(fault.Export, snap.Tick(), "observer", err)
		}
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context, attempt int) (_ *registry.Snapshot, err error) {
	cur := s.reg.Snapshot()
	tick := cur.Tick()

	ctx, span := s.tracer.Start(ctx, "tick.step", trace.WithAttributes(
		attribute.Int64("tick", tick),
		attribute.Int("entities", cur.Len()),
		attribute.Int("attempt", attempt),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(fault.KindOf(err)))
		}
		span.End()
		s.setState(Idle)
	}()

	tctx, cancel := ctx, context.CancelFunc(func() {})
	if s.opts.TickTimeout > 0 {
		tctx, cancel = context.WithTimeout(ctx, s.opts.TickTimeout)
	}
	defer cancel()

	t := newTally()
	if err := s.evaluate(tctx, cur, t); err != nil {
		s.reg.Discard()
		return nil, s.classify(ctx, tctx, tick, err)
	}
	if tctx.Err() != nil {
		s.reg.Discard()
		return nil, s.classify(ctx, tctx, tick, tctx.Err())
	}

	s.setState(Committing)
	next, stats, err := s.reg.Commit(tick)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ledger.fold(t, stats)
	l := s.ledger.clone()
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("entities.next", next.Len()),
		attribute.Int("collisions", stats.Collisions),
		attribute.Int64("annihilated", t.annihilated+stats.Annihilated),
		attribute.Int64("contained", t.contained),
	)
	if err := s.notify(ctx, next, l); err != nil {
		return nil, err
	}
	return next, nil
}

// classify turns a context error raised while evaluating into a timeout
// fault when only the tick budget expired. Cancellation of the run itself is
// passed through unchanged.
func (s *Scheduler) classify(ctx, tctx context.Context, tick int64, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if fault.KindOf(err) == "" && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fault.Wrap(fault.Timeout, tick, fmt.Sprintf("tick exceeded %s", s.opts.TickTimeout), tctx.Err())
	}
	return err
}

func (s *Scheduler) evaluate(ctx context.Context, cur *registry.Snapshot, t *tally) error {
	s.setState(Evaluating)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, e := range cur.Entities() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return s.evaluateOne(gctx, e, cur.Tick(), t) })
	}
	s.setState(Collecting)
	return g.Wait()
}

func (s *Scheduler) evaluateOne(ctx context.Context, e entity.Entity, tick int64, t *tally) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	act, err := s.safeEvaluate(e, tick)
	if err != nil {
		if errors.Is(err, entity.ErrUnclassifiable) {
			return &fault.Error{Kind: fault.Collision, Tick: tick, Entity: e.Ident(), Message: entity.Kind(e), Cause: err}
		}
		f := &fault.Error{Kind: fault.Evaluation, Tick: tick, Entity: e.Ident(), Message: entity.Kind(e), Cause: err}
		if s.opts.FailureMode == FailFast {
			return f
		}
		s.opts.Logf("engine: contained %v", f)
		t.contain()
		act = entity.Wait()
	}

	switch act.Kind {
	case entity.ActionWait:
		s.reg.Stage(e.Pos(), e)
	case entity.ActionUpdate:
		for _, n := range act.Next {
			s.reg.Stage(n.Pos(), n)
		}
		t.action(act)
	}
	return nil
}

func (s *Scheduler) safeEvaluate(e entity.Entity, tick int64) (act entity.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.opts.Evaluate(e, tick, s.opts.Rules)
}
