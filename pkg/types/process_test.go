package types

import "testing"

func TestFlowForListingStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Flow
	}{
		{ListingStatusPrivate, FlowStrict},
		{ListingStatusPending, FlowStrict},
		{ListingStatusListed, FlowOperational},
		{ListingStatusSold, FlowOperational},
		{"something_else", FlowOperational},
	}
	for _, tt := range tests {
		if got := FlowForListingStatus(tt.status); got != tt.want {
			t.Errorf("FlowForListingStatus(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestProcessStateView(t *testing.T) {
	st := ProcessState{PropertyID: "p", CommittedStage: 3}

	if st.IsHistorical() {
		t.Error("nil cursor must not be historical")
	}
	if v := st.View(); v.Stage != 3 || v.IsHistorical {
		t.Errorf("View() = %+v, want live stage 3", v)
	}

	cursor := 1
	st.ViewCursor = &cursor
	if !st.IsHistorical() {
		t.Error("cursor behind committed stage must be historical")
	}
	if v := st.View(); v.Stage != 1 || !v.IsHistorical {
		t.Errorf("View() = %+v, want historical stage 1", v)
	}

	// A cursor parked on the committed stage is the live view.
	cursor = 3
	if st.IsHistorical() {
		t.Error("cursor at committed stage must not be historical")
	}
	if v := st.View(); v.Stage != 3 || v.IsHistorical {
		t.Errorf("View() = %+v, want live stage 3", v)
	}
}

func TestTransitionResultBlocked(t *testing.T) {
	ok := TransitionResult{Outcome: OutcomeOK}
	if ok.Blocked() {
		t.Error("ok result reported as blocked")
	}
	blocked := TransitionResult{Outcome: OutcomeBlocked, MissingDocuments: []string{"cpcv"}}
	if !blocked.Blocked() {
		t.Error("blocked result not reported as blocked")
	}
}
