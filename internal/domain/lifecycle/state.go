package lifecycle

import (
	"time"

	"github.com/gatewise/gatepass/internal/domain/entity"
)

// State represents where an appointment sits in its gate lifecycle
type State string

const (
	StateScheduled  State = "SCHEDULED"
	StateCheckedIn  State = "CHECKED_IN"
	StateCheckedOut State = "CHECKED_OUT"
	StateInactive   State = "INACTIVE"
)

var validStates = map[State]bool{
	StateScheduled:  true,
	StateCheckedIn:  true,
	StateCheckedOut: true,
	StateInactive:   true,
}

var terminalStates = map[State]bool{
	StateCheckedOut: true,
	StateInactive:   true,
}

// IsTerminal returns true if the state allows no further transitions.
// Re-entry after checkout requires a new appointment, not a state reset.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// Trigger represents an event that can cause a lifecycle transition
type Trigger string

const (
	TriggerCheckIn    Trigger = "CHECK_IN"
	TriggerCheckOut   Trigger = "CHECK_OUT"
	TriggerDeactivate Trigger = "DEACTIVATE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// StateOf derives the lifecycle state from an appointment's recorded times
// and activity flag at the given instant. Check-in and check-out marks take
// precedence over the validity window so duplicate transitions surface as
// duplicates, not as expiry.
func StateOf(a *entity.Appointment, now time.Time) State {
	switch {
	case a.CheckedOutAt != nil:
		return StateCheckedOut
	case a.CheckedInAt != nil:
		return StateCheckedIn
	case !a.Active || !a.WithinWindow(now):
		return StateInactive
	default:
		return StateScheduled
	}
}
