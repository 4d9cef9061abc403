package engine

// State is the scheduler's position in the tick cycle.
type State int32

const (
	// Idle waits between ticks.
	Idle State = iota
	// Evaluating dispatches entity evaluations.
	Evaluating
	// Collecting waits for every dispatched evaluation to finish.
	Collecting
	// Committing resolves collisions and publishes the next snapshot.
	Committing
	// Stopped is terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Evaluating:
		return "evaluating"
	case Collecting:
		return "collecting"
	case Committing:
		return "committing"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// FailureMode selects what a failed entity evaluation does to the tick.
type FailureMode string

const (
	// FailSoft logs the failure and keeps the entity as if it waited.
	FailSoft FailureMode = "soft"
	// FailFast halts the run with an evaluation fault.
	FailFast FailureMode = "fast"
)

// ParseFailureMode accepts "soft", "fast" and their long forms.
func ParseFailureMode(s string) (FailureMode, bool) {
	switch s {
	case "soft", "fail-soft":
		return FailSoft, true
	case "fast", "fail-fast":
		return FailFast, true
	}
	return "", false
}

// Reason says why a run ended.
type Reason string

const (
	ReasonBudget    Reason = "budget"
	ReasonTimeLimit Reason = "time-limit"
	ReasonExtinct   Reason = "extinct"
	ReasonStopped   Reason = "stopped"
	ReasonCanceled  Reason = "canceled"
	ReasonFault     Reason = "fault"
)
