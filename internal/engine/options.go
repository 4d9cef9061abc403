package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/trace"

	"tickframe/internal/collision"
	"tickframe/internal/entity"
	"tickframe/internal/registry"
)

// EvaluateFunc computes an entity's response to a tick.
type EvaluateFunc func(e entity.Entity, tick int64, r *entity.Rules) (entity.Action, error)

// Observer receives the initial snapshot and every committed one after it.
// An observer error halts the run with an export fault.
type Observer interface {
	Observe(ctx context.Context, snap *registry.Snapshot, ledger Ledger) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, snap *registry.Snapshot, ledger Ledger) error

func (f ObserverFunc) Observe(ctx context.Context, snap *registry.Snapshot, ledger Ledger) error {
	return f(ctx, snap, ledger)
}

// Options configures a Scheduler.
type Options struct {
	Rules    *entity.Rules
	Resolver collision.Resolver

	// Workers bounds concurrent evaluations; zero means GOMAXPROCS.
	Workers     int
	FailureMode FailureMode

	// MaxTicks ends the run after that many committed ticks; zero is unbounded.
	MaxTicks int64
	// TimeLimit bounds the wall-clock duration of Run; zero is unbounded.
	TimeLimit time.Duration
	// TickTimeout aborts a tick that runs longer; the tick is retried up to
	// TickRetries times before the run halts.
	TickTimeout time.Duration
	TickRetries int
	// TPS paces Run to at most that many ticks per second; zero runs flat out.
	TPS int

	Observers []Observer
	Logf      func(format string, args ...any)
	Tracer    trace.Tracer
	Evaluate  EvaluateFunc
}

func (o *Options) normalize() error {
	var errs []error
	if o.Rules == nil {
		errs = append(errs, errors.New("rules are required"))
	} else if err := o.Rules.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Resolver == nil {
		errs = append(errs, errors.New("collision resolver is required"))
	}
	if o.FailureMode != FailSoft && o.FailureMode != FailFast {
		errs = append(errs, fmt.Errorf("failure mode must be %q or %q, got %q", FailSoft, FailFast, o.FailureMode))
	}
	if o.Workers < 0 || o.MaxTicks < 0 || o.TickRetries < 0 || o.TPS < 0 {
		errs = append(errs, errors.New("workers, tick budget, retries and tps must not be negative"))
	}
	if o.TimeLimit < 0 || o.TickTimeout < 0 {
		errs = append(errs, errors.New("time limit and tick timeout must not be negative"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logf == nil {
		o.Logf = log.Printf
	}
	if o.Evaluate == nil {
		o.Evaluate = entity.Evaluate
	}
	return nil
}
