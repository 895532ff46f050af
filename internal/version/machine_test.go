package version

import (
	"strings"
	"testing"
)

func TestNextApproveState(t *testing.T) {
	tests := []struct {
		from   State
		want   State
		wantOk bool
	}{
		{StateDraft, StateReview1, true},
		{StateReview1, StateReview2, true},
		{StateReview2, StateActive, true},
		{StateActive, StateActive, false},
		{StateRejected, StateRejected, false},
	}

	for _, tt := range tests {
		got, ok := NextApproveState(tt.from)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("NextApproveState(%s) = (%s, %v), want (%s, %v)",
				tt.from, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestCanReject(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateDraft, true},
		{StateReview1, true},
		{StateReview2, true},
		{StateActive, false},
		{StateRejected, false},
	}

	for _, tt := range tests {
		if got := CanReject(tt.state); got != tt.want {
			t.Errorf("CanReject(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestApprovalChain(t *testing.T) {
	// Three approvals walk a draft to active: S0->S1->S2->S3.
	state := StateDraft
	var transitions []string
	for i := 0; i < 3; i++ {
		next, ok := NextApproveState(state)
		if !ok {
			t.Fatalf("approval %d refused from %s", i+1, state)
		}
		transitions = append(transitions, string(state)+"->"+string(next))
		state = next
	}

	if state != StateActive {
		t.Errorf("final state = %s, want %s", state, StateActive)
	}
	want := "S0->S1,S1->S2,S2->S3"
	if got := strings.Join(transitions, ","); got != want {
		t.Errorf("transitions = %s, want %s", got, want)
	}

	// A fourth approval must fail.
	if _, ok := NextApproveState(state); ok {
		t.Error("active version must not advance further")
	}
}

func TestStaleStateFailure(t *testing.T) {
	// Two callers read a draft; the first approval commits S0->S1. The
	// second re-reads S1 under its row lock and must fail instead of
	// advancing the version a second step to S2.
	res := staleStateFailure(StateDraft, StateReview1, "approve")
	if res.Success {
		t.Error("lost race must not report success")
	}
	if res.NewState != StateReview1 {
		t.Errorf("NewState = %s, want the current state %s", res.NewState, StateReview1)
	}
	if !strings.Contains(res.Message, "not in expected state") {
		t.Errorf("message should name the stale read, got: %s", res.Message)
	}

	// Same shape for a reject racing an approve: the reject saw S1, the
	// approve moved the version to S2.
	res = staleStateFailure(StateReview1, StateReview2, "reject")
	if res.Success || res.NewState != StateReview2 {
		t.Errorf("racing reject must fail with the current state, got %+v", res)
	}
}

func TestTransitionFailureMessage(t *testing.T) {
	res := transitionFailure(StateActive, "approve")
	if res.Success {
		t.Error("failure result must not report success")
	}
	if res.NewState != StateActive {
		t.Errorf("NewState = %s, want unchanged %s", res.NewState, StateActive)
	}
	if !strings.Contains(res.Message, "cannot approve from state S3") {
		t.Errorf("unexpected message: %s", res.Message)
	}
}

func TestStateLabels(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDraft, "DRAFT"},
		{StateReview1, "REVIEW_1"},
		{StateReview2, "REVIEW_2"},
		{StateActive, "ACTIVE"},
		{StateRejected, "REJECTED"},
		{State("X9"), "X9"},
	}

	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.want {
			t.Errorf("%s.Label() = %q, want %q", string(tt.state), got, tt.want)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{
		MissingRequired:       []string{"height"},
		UndefinedPlaceholders: []string{"unknown"},
	}
	msg := err.Error()
	if !strings.Contains(msg, "height") || !strings.Contains(msg, "unknown") {
		t.Errorf("error message should name both lists, got: %s", msg)
	}
}
