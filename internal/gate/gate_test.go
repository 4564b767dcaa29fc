package gate

import (
	"testing"

	"github.com/scrypster/saleflow/pkg/types"
)

func TestDocumentsSatisfiedNoRequirements(t *testing.T) {
	res := DocumentsSatisfied(types.Stage{ID: 1, Label: "Offers"}, nil)
	if !res.Met {
		t.Error("a stage with no required categories must always be satisfied")
	}
	if len(res.Missing) != 0 {
		t.Errorf("expected no missing categories, got %v", res.Missing)
	}
}

func TestDocumentsSatisfiedReportsMissing(t *testing.T) {
	stage := types.Stage{
		ID:                         0,
		Label:                      "Preparation",
		RequiredDocumentCategories: []string{"certidao", "caderneta"},
	}
	docs := []types.Document{
		{Category: "certidao", Status: types.DocumentPending},
	}

	res := DocumentsSatisfied(stage, docs)
	if res.Met {
		t.Error("expected gate to be unmet")
	}
	if len(res.Missing) != 1 || res.Missing[0] != "caderneta" {
		t.Errorf("expected missing [caderneta], got %v", res.Missing)
	}
}

func TestDocumentsSatisfiedIgnoresValidationStatus(t *testing.T) {
	stage := types.Stage{
		ID:                         0,
		Label:                      "Preparation",
		RequiredDocumentCategories: []string{"certidao"},
	}

	// Presence counts even for rejected documents: the gate checks the
	// vault has something in the category, not that it passed validation.
	res := DocumentsSatisfied(stage, []types.Document{
		{Category: "certidao", Status: types.DocumentRejected},
	})
	if !res.Met {
		t.Error("a rejected document still counts as present")
	}
}

func TestDocumentsSatisfiedMissingSorted(t *testing.T) {
	stage := types.Stage{
		ID:                         0,
		Label:                      "Preparation",
		RequiredDocumentCategories: []string{"zeta", "alpha", "mid"},
	}

	res := DocumentsSatisfied(stage, nil)
	want := []string{"alpha", "mid", "zeta"}
	if len(res.Missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, res.Missing)
	}
	for i := range want {
		if res.Missing[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, res.Missing)
		}
	}
}

func TestProposalGateSatisfied(t *testing.T) {
	tests := []struct {
		name       string
		proposals  []types.Proposal
		wantMet    bool
		wantReason types.ProposalGateReason
	}{
		{
			name:       "no proposals",
			proposals:  nil,
			wantReason: types.ReasonNoAcceptedProposal,
		},
		{
			name: "only pending proposals",
			proposals: []types.Proposal{
				{Status: types.ProposalPending, Amount: 100000, HasWrittenProposal: true, Deadline: "2025-06-01"},
			},
			wantReason: types.ReasonNoAcceptedProposal,
		},
		{
			name: "two accepted proposals violate upstream contract",
			proposals: []types.Proposal{
				{Status: types.ProposalAccepted, Amount: 100000, HasWrittenProposal: true, Deadline: "2025-06-01"},
				{Status: types.ProposalAccepted, Amount: 200000, HasWrittenProposal: true, Deadline: "2025-07-01"},
			},
			wantReason: types.ReasonNoAcceptedProposal,
		},
		{
			name: "accepted without written proposal",
			proposals: []types.Proposal{
				{Status: types.ProposalAccepted, Amount: 100000, Deadline: "2025-06-01"},
			},
			wantReason: types.ReasonMissingWrittenProposal,
		},
		{
			name: "accepted with zero amount",
			proposals: []types.Proposal{
				{Status: types.ProposalAccepted, HasWrittenProposal: true, Deadline: "2025-06-01"},
			},
			wantReason: types.ReasonMissingAmountOrDeadline,
		},
		{
			name: "accepted with empty deadline",
			proposals: []types.Proposal{
				{Status: types.ProposalAccepted, HasWrittenProposal: true, Amount: 250000},
			},
			wantReason: types.ReasonMissingAmountOrDeadline,
		},
		{
			name: "complete accepted proposal",
			proposals: []types.Proposal{
				{Status: types.ProposalRejected, Amount: 120000},
				{Status: types.ProposalAccepted, HasWrittenProposal: true, Amount: 250000, Deadline: "2025-06-01"},
			},
			wantMet: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ProposalGateSatisfied(tt.proposals)
			if res.Met != tt.wantMet {
				t.Errorf("Met = %v, want %v", res.Met, tt.wantMet)
			}
			if !tt.wantMet && res.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
		})
	}
}

func TestGateFunctionsDoNotMutateSnapshots(t *testing.T) {
	stage := types.Stage{ID: 0, Label: "Preparation", RequiredDocumentCategories: []string{"certidao"}}
	docs := []types.Document{{Category: "other", Status: types.DocumentPending}}
	proposals := []types.Proposal{{Status: types.ProposalPending, Amount: 1}}

	DocumentsSatisfied(stage, docs)
	ProposalGateSatisfied(proposals)

	if docs[0].Category != "other" || proposals[0].Status != types.ProposalPending {
		t.Error("gate functions must not mutate their snapshots")
	}
}
