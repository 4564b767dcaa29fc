// Package types defines the shared domain types for the sale process
// engine: stages, process state, external snapshots, audit entries, and
// transition results.
package types

// Stage is one ordered step of the sale pipeline. Stages are immutable
// catalog entries: they are loaded once at process start and never created
// or destroyed at runtime.
type Stage struct {
	// ID is the stage position in the pipeline (0 = initial).
	ID int `json:"id" yaml:"id"`

	// Label is the human-readable stage name (e.g. "CPCV", "Escritura").
	Label string `json:"label" yaml:"label"`

	// RequiredDocumentCategories lists the document categories that must be
	// present in the vault before a strict-flow advance out of this stage.
	// May be empty.
	RequiredDocumentCategories []string `json:"required_document_categories,omitempty" yaml:"required_document_categories,omitempty"`

	// Terminal marks the final stage ("Sold"). Exactly one stage is terminal
	// and it carries the highest ID.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Flow selects the advancement policy for a sale process.
type Flow string

const (
	// FlowStrict gates every advance on document completeness. Used for
	// private and pending listings that are still being prepared.
	FlowStrict Flow = "strict"

	// FlowOperational allows ungated advancement except at the proposal
	// boundary, where an accepted written proposal is required. Used for
	// actively listed properties.
	FlowOperational Flow = "operational"
)

// Listing status constants. The engine reads the status once at load time to
// select the flow, and writes it exactly once when the process finalizes.
const (
	ListingStatusPrivate = "private"
	ListingStatusPending = "pending"
	ListingStatusListed  = "listed"
	ListingStatusSold    = "sold"
)

// FlowForListingStatus derives the advancement policy from a listing status.
// Private and pending listings need strict document gating; everything else
// runs the operational flow.
func FlowForListingStatus(status string) Flow {
	switch status {
	case ListingStatusPrivate, ListingStatusPending:
		return FlowStrict
	default:
		return FlowOperational
	}
}
