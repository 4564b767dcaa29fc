package types

import "time"

// ProcessState is the mutable aggregate owned by the sale process engine,
// one per property. CommittedStage is the durable progress pointer;
// ViewCursor is process-local and tracks which stage the caller is looking
// at when browsing history.
//
// Invariant: 0 <= CommittedStage <= max stage, and ViewCursor is either nil
// or 0 <= *ViewCursor <= CommittedStage. Future stages are locked.
type ProcessState struct {
	PropertyID string `json:"property_id"`

	// CommittedStage is the persisted "current progress" pointer. It only
	// moves through a successful guarded transition.
	CommittedStage int `json:"committed_stage"`

	// ViewCursor, when non-nil, means the caller is inspecting a stage other
	// than the committed one. It is never persisted.
	ViewCursor *int `json:"view_cursor,omitempty"`

	// Flow is derived once from the listing status when the process is
	// loaded and never changes for the lifetime of the instance.
	Flow Flow `json:"flow"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Viewing returns the stage the caller is currently looking at: the view
// cursor if set, otherwise the committed stage.
func (p *ProcessState) Viewing() int {
	if p.ViewCursor != nil {
		return *p.ViewCursor
	}
	return p.CommittedStage
}

// IsHistorical reports whether the caller is browsing a stage behind the
// committed one.
func (p *ProcessState) IsHistorical() bool {
	return p.ViewCursor != nil && *p.ViewCursor < p.CommittedStage
}

// ViewState is the caller-facing view position of a process.
type ViewState struct {
	Stage        int  `json:"stage"`
	IsHistorical bool `json:"is_historical"`
}

// View returns the caller-facing view state.
func (p *ProcessState) View() ViewState {
	return ViewState{Stage: p.Viewing(), IsHistorical: p.IsHistorical()}
}
