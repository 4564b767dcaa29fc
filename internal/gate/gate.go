// Package gate implements the precondition evaluator: pure functions that
// decide, against externally-owned snapshots, whether a stage's gating
// conditions are satisfied. Nothing here mutates the snapshots or keeps
// hidden state, which keeps the guard logic unit-testable without a
// database.
package gate

import (
	"sort"

	"github.com/scrypster/saleflow/pkg/types"
)

// DocumentResult is the outcome of a document-completeness check.
type DocumentResult struct {
	Met bool

	// Missing lists the required categories with no document in the vault,
	// sorted for stable output.
	Missing []string
}

// DocumentsSatisfied checks whether every required document category of the
// stage has at least one document in the snapshot. Validation status is
// irrelevant: a pending or rejected document still counts as present.
func DocumentsSatisfied(stage types.Stage, documents []types.Document) DocumentResult {
	if len(stage.RequiredDocumentCategories) == 0 {
		return DocumentResult{Met: true}
	}

	present := make(map[string]bool, len(documents))
	for _, d := range documents {
		present[d.Category] = true
	}

	var missing []string
	for _, cat := range stage.RequiredDocumentCategories {
		if !present[cat] {
			missing = append(missing, cat)
		}
	}

	if len(missing) == 0 {
		return DocumentResult{Met: true}
	}
	sort.Strings(missing)
	return DocumentResult{Missing: missing}
}

// ProposalResult is the outcome of the proposal gate check.
type ProposalResult struct {
	Met bool

	// Reason identifies the unmet condition when Met is false.
	Reason types.ProposalGateReason
}

// ProposalGateSatisfied checks the acceptance precondition for crossing the
// Listing/Proposals boundary: exactly one accepted proposal backed by a
// written document, with a non-zero amount and a non-empty deadline.
//
// Accepting a proposal atomically rejects all others upstream, so more than
// one accepted proposal violates that contract and is treated the same as
// none.
func ProposalGateSatisfied(proposals []types.Proposal) ProposalResult {
	var accepted *types.Proposal
	acceptedCount := 0
	for i := range proposals {
		if proposals[i].Status == types.ProposalAccepted {
			accepted = &proposals[i]
			acceptedCount++
		}
	}

	if acceptedCount != 1 {
		return ProposalResult{Reason: types.ReasonNoAcceptedProposal}
	}
	if !accepted.HasWrittenProposal {
		return ProposalResult{Reason: types.ReasonMissingWrittenProposal}
	}
	if accepted.Amount == 0 || accepted.Deadline == "" {
		return ProposalResult{Reason: types.ReasonMissingAmountOrDeadline}
	}
	return ProposalResult{Met: true}
}
