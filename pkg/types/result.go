package types

// Outcome classifies a transition result. Blocked is an expected,
// recoverable outcome (the user can act and retry), not an error.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeBlocked Outcome = "blocked"
)

// ProposalGateReason enumerates why the proposal gate rejected an advance,
// so callers can surface the precise unmet condition instead of a generic
// "cannot proceed".
type ProposalGateReason string

const (
	ReasonNoAcceptedProposal      ProposalGateReason = "no_accepted_proposal"
	ReasonMissingWrittenProposal  ProposalGateReason = "missing_written_proposal"
	ReasonMissingAmountOrDeadline ProposalGateReason = "missing_amount_or_deadline"
)

// TransitionResult is the outcome of a guarded engine operation. Exactly
// one of the blocked fields is populated when Outcome is OutcomeBlocked:
// MissingDocuments for strict-flow document gating, ProposalReason for the
// operational-flow proposal gate.
type TransitionResult struct {
	Outcome Outcome   `json:"outcome"`
	View    ViewState `json:"view"`

	// MissingDocuments lists the document categories still absent from the
	// vault when a strict-flow advance is blocked.
	MissingDocuments []string `json:"missing_documents,omitempty"`

	// ProposalReason identifies the unmet proposal condition when an
	// operational-flow advance is blocked at the proposal boundary.
	ProposalReason ProposalGateReason `json:"proposal_reason,omitempty"`
}

// Blocked reports whether the transition was refused by a guard.
func (r *TransitionResult) Blocked() bool {
	return r.Outcome == OutcomeBlocked
}
