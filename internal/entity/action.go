package entity

// ActionKind distinguishes the two responses an entity can give to a tick.
type ActionKind uint8

const (
	// ActionWait keeps the entity unchanged for another tick.
	ActionWait ActionKind = iota
	// ActionUpdate replaces the entity with zero or more successors.
	ActionUpdate
)

func (k ActionKind) String() string {
	if k == ActionWait {
		return "wait"
	}
	return "update"
}

// Outcome labels what an Update did, for bookkeeping.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeMoved
	OutcomeDivided
	OutcomeMerged
	OutcomeExploded
	OutcomeAnnihilated
	OutcomeBounced
	OutcomeCollided
)

var outcomeNames = [...]string{
	OutcomeNone:        "none",
	OutcomeMoved:       "moved",
	OutcomeDivided:     "divided",
	OutcomeMerged:      "merged",
	OutcomeExploded:    "exploded",
	OutcomeAnnihilated: "annihilated",
	OutcomeBounced:     "bounced",
	OutcomeCollided:    "collided",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Action is the result of evaluating an entity at a tick.
type Action struct {
	Kind    ActionKind
	Next    []Entity
	Outcome Outcome
	// Annihilated is the energy destroyed by this action.
	Annihilated int64
}

// Wait returns the wait action.
func Wait() Action { return Action{Kind: ActionWait} }

// Update returns an update action replacing the entity with next.
func Update(outcome Outcome, next ...Entity) Action {
	return Action{Kind: ActionUpdate, Next: next, Outcome: outcome}
}
