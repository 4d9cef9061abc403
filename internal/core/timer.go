package core

import (
	"context"
	"time"
)

// FixedStep paces ticks at a steady ticks-per-second rate. A zero or negative
// rate disables pacing.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		f.step = 0
		return
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the configured interval between ticks.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether a frame-driven loop should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	if f.step == 0 {
		return true
	}
	now := time.Now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}

// Wait blocks until the next tick is due or ctx ends. The first call returns
// immediately.
func (f *FixedStep) Wait(ctx context.Context) error {
	if f.step == 0 {
		return ctx.Err()
	}
	now := time.Now()
	if f.last.IsZero() {
		f.last = now
		return ctx.Err()
	}
	due := f.last.Add(f.step)
	if d := due.Sub(now); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		now = due
	}
	f.last = now
	return nil
}
