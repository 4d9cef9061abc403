package engine

import (
	"context"
	"errors"

	"tickframe/internal/core"
	"tickframe/internal/fault"
)

// Result describes a finished run.
type Result struct {
	Reason Reason
	// LastTick is the tick of the last committed snapshot.
	LastTick int64
	// Ticks counts the ticks committed by this Run call.
	Ticks    int64
	Entities int
	Energy   int64
	Ledger   Ledger
	Fault    *fault.Error
}

// Run steps until the tick budget, the time limit, extinction, Stop, ctx
// cancellation or a fatal fault ends the run, and leaves the scheduler
// Stopped. The returned error is non-nil only for a fault; it is the same
// value as Result.Fault.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Result{}, errors.New("engine: run already started")
	}
	defer s.setState(Stopped)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.opts.TimeLimit > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
	}
	defer cancel()

	var pacer *core.FixedStep
	if s.opts.TPS > 0 {
		pacer = core.NewFixedStep(s.opts.TPS)
	}

	var res Result
	for {
		reason := s.boundary(ctx, runCtx, res.Ticks)
		if reason == "" && pacer != nil {
			if pacer.Wait(runCtx) != nil {
				reason = s.boundary(ctx, runCtx, res.Ticks)
			}
		}
		if reason != "" {
			res.Reason = reason
			break
		}

		_, err := s.Step(runCtx)
		if err == nil {
			res.Ticks++
			continue
		}
		if errors.Is(err, ErrStopped) {
			res.Reason = ReasonStopped
			break
		}
		var f *fault.Error
		if errors.As(err, &f) {
			res.Reason, res.Fault = ReasonFault, f
			break
		}
		if reason := s.boundary(ctx, runCtx, res.Ticks); reason != "" {
			res.Reason = reason
			break
		}
		res.Reason, res.Fault = ReasonFault, fault.Wrap(fault.Evaluation, s.Snapshot().Tick(), "tick", err)
		break
	}

	snap := s.Snapshot()
	res.LastTick = snap.Tick()
	res.Entities = snap.Len()
	res.Energy = snap.Energy()
	res.Ledger = s.Ledger()
	if res.Fault != nil {
		s.opts.Logf("engine: halted at tick %d: %v", res.LastTick, res.Fault)
		return res, res.Fault
	}
	s.opts.Logf("engine: run ended at tick %d (%s), %d entities", res.LastTick, res.Reason, res.Entities)
	return res, nil
}

// boundary checks the exit conditions that apply between ticks.
func (s *Scheduler) boundary(ctx, runCtx context.Context, ticks int64) Reason {
	switch {
	case s.stop.Load():
		return ReasonStopped
	case ctx.Err() != nil:
		return ReasonCanceled
	case runCtx.Err() != nil:
		return ReasonTimeLimit
	case s.Snapshot().Len() == 0:
		return ReasonExtinct
	case s.opts.MaxTicks > 0 && ticks >= s.opts.MaxTicks:
		return ReasonBudget
	}
	return ""
}
