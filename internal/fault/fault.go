// Package fault defines the error categories a simulation run can halt or
// recover with.
package fault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind is the machine-readable fault category.
type Kind string

const (
	// Evaluation marks a failure inside one entity's evaluation.
	Evaluation Kind = "evaluation"
	// Collision marks a colliding group the resolver could not classify.
	Collision Kind = "collision"
	// Registry marks a staging inconsistency detected at commit.
	Registry Kind = "registry"
	// Config marks a configuration rejected before the first tick.
	Config Kind = "config"
	// Timeout marks a tick aborted by its wall-clock budget.
	Timeout Kind = "timeout"
	// Export marks a snapshot sink failure.
	Export Kind = "export"
)

// Fatal reports whether faults of this kind always halt a run.
func (k Kind) Fatal() bool {
	switch k {
	case Collision, Registry, Config, Export:
		return true
	}
	return false
}

// Error is the domain error carried out of a run.
type Error struct {
	Kind    Kind
	Message string
	Tick    int64     // tick being processed, -1 when not tick-bound
	Entity  uuid.UUID // zero when not entity-bound
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s fault", e.Kind)
	if e.Tick >= 0 {
		msg += fmt.Sprintf(" at tick %d", e.Tick)
	}
	if e.Entity != uuid.Nil {
		msg += fmt.Sprintf(" (entity %s)", e.Entity)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a fault without a cause.
func New(kind Kind, tick int64, message string) *Error {
	return &Error{Kind: kind, Tick: tick, Message: message}
}

// Wrap creates a fault around an underlying cause.
func Wrap(kind Kind, tick int64, message string, cause error) *Error {
	return &Error{Kind: kind, Tick: tick, Message: message, Cause: cause}
}

// Of is a matcher for errors.Is: errors.Is(err, fault.Of(fault.Registry)).
func Of(kind Kind) *Error { return &Error{Kind: kind} }

// KindOf extracts the fault kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
