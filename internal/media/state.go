package media

import "fmt"

// ProcessingState tracks an attachment through its lifecycle. The numeric
// values are part of the stored representation and must not be reordered.
type ProcessingState int

const (
	StateFailed     ProcessingState = -1
	StateNotStarted ProcessingState = 0
	StateInProgress ProcessingState = 1
	StateComplete   ProcessingState = 2
)

// String returns the canonical lowercase name used in logs and JSON.
func (s ProcessingState) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of the defined states.
func (s ProcessingState) Valid() bool {
	switch s {
	case StateFailed, StateNotStarted, StateInProgress, StateComplete:
		return true
	}
	return false
}

// Terminal reports whether no further transition out of s is permitted.
func (s ProcessingState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// CanTransition reports whether moving from s to next honors the state
// machine: NOT_STARTED -> IN_PROGRESS -> {COMPLETE | FAILED}, with the
// synchronous path allowed to create a record directly in COMPLETE. FAILED
// is terminal and irreversible.
func (s ProcessingState) CanTransition(next ProcessingState) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	switch s {
	case StateNotStarted:
		return next == StateInProgress || next == StateFailed
	case StateInProgress:
		return next == StateComplete || next == StateFailed
	}
	return false
}
