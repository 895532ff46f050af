package version

import "fmt"

// State is a description version's lifecycle state.
type State string

const (
	StateDraft    State = "S0"
	StateReview1  State = "S1"
	StateReview2  State = "S2"
	StateActive   State = "S3"
	StateRejected State = "D"
)

// Label returns the human-readable name of a state.
func (s State) Label() string {
	switch s {
	case StateDraft:
		return "DRAFT"
	case StateReview1:
		return "REVIEW_1"
	case StateReview2:
		return "REVIEW_2"
	case StateActive:
		return "ACTIVE"
	case StateRejected:
		return "REJECTED"
	default:
		return string(s)
	}
}

// NextApproveState returns the state one approval step ahead. Active and
// rejected versions cannot advance.
func NextApproveState(s State) (State, bool) {
	switch s {
	case StateDraft:
		return StateReview1, true
	case StateReview1:
		return StateReview2, true
	case StateReview2:
		return StateActive, true
	default:
		return s, false
	}
}

// CanReject reports whether a version in the given state may be rejected.
// An active version can only be superseded, never rejected.
func CanReject(s State) bool {
	switch s {
	case StateDraft, StateReview1, StateReview2:
		return true
	default:
		return false
	}
}

// TransitionResult reports the outcome of an approve or reject call.
// Failures are values for the caller to act on, never fatal errors.
type TransitionResult struct {
	Success  bool
	Message  string
	NewState State
}

func transitionFailure(current State, action string) TransitionResult {
	return TransitionResult{
		Success:  false,
		Message:  fmt.Sprintf("cannot %s from state %s (%s)", action, current, current.Label()),
		NewState: current,
	}
}

// staleStateFailure reports a lost race: the version moved between the
// caller's read and its transaction. First writer wins; the loser gets
// this failure instead of a second transition from the new state.
func staleStateFailure(expected, current State, action string) TransitionResult {
	return TransitionResult{
		Success: false,
		Message: fmt.Sprintf("cannot %s: version not in expected state %s (now %s)",
			action, expected.Label(), current.Label()),
		NewState: current,
	}
}
