package types

// DocumentStatus is the validation state of a vault document. The engine
// only needs category presence for gating, not the validation outcome, but
// the status is part of the snapshot contract with the document vault.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentValidated DocumentStatus = "validated"
	DocumentRejected  DocumentStatus = "rejected"
)

// Document is one entry of the document vault snapshot for a property.
type Document struct {
	Category string         `json:"category"`
	Status   DocumentStatus `json:"status"`
}

// ProposalStatus is the lifecycle state of a purchase proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is one entry of the proposal snapshot for a property. Accepting
// a proposal atomically rejects all others, so at most one proposal is
// accepted at any time.
type Proposal struct {
	Status             ProposalStatus `json:"status"`
	HasWrittenProposal bool           `json:"has_written_proposal"`
	Amount             float64        `json:"amount"`
	Deadline           string         `json:"deadline"`
}

// Snapshot bundles the externally-owned data a guarded transition is
// evaluated against. Snapshots are read-only inputs: the engine never
// mutates them.
type Snapshot struct {
	Documents []Document `json:"documents,omitempty"`
	Proposals []Proposal `json:"proposals,omitempty"`
}
