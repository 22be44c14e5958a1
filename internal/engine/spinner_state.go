package engine

import "fmt"

// SpinnerState tracks which pipeline phase the display is showing.
type SpinnerState int

const (
	StateIdle       SpinnerState = iota // Nothing started yet
	StateGenerating                     // Engine is drafting or repairing
	StateValidating                     // Tools are running
	StateCompletion                     // Pipeline reached commit
	StateError                          // Pipeline failed
)

// String returns a human-readable name for the state.
func (s SpinnerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGenerating:
		return "Generating"
	case StateValidating:
		return "Validating"
	case StateCompletion:
		return "Completion"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// validTransitions defines the explicit allow-list of state transitions.
var validTransitions = map[SpinnerState]map[SpinnerState]bool{
	StateIdle: {
		StateGenerating: true,
		StateIdle:       true,
	},
	StateGenerating: {
		StateValidating: true,
		StateError:      true,
	},
	StateValidating: {
		StateGenerating: true,
		StateCompletion: true,
		StateError:      true,
	},
	StateCompletion: {
		StateIdle:       true,
		StateCompletion: true,
		StateError:      true,
	},
	StateError: {
		StateIdle: true,
	},
}

// Transition validates whether a state transition from → to is allowed.
// Returns nil if the transition is valid, or an error describing the invalid transition.
func Transition(from, to SpinnerState) error {
	if targets, ok := validTransitions[from]; ok {
		if targets[to] {
			return nil
		}
	}
	return fmt.Errorf("invalid spinner transition: %s → %s", from, to)
}
