package handlers

import "github.com/scrypster/saleflow/pkg/types"

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TransitionRequest is the request body for POST advance and finalize. The
// snapshots are the caller's view of the externally-owned document vault and
// proposal list the guard is evaluated against.
type TransitionRequest struct {
	ActorID   string           `json:"actor_id,omitempty"`
	Documents []types.Document `json:"documents,omitempty"`
	Proposals []types.Proposal `json:"proposals,omitempty"`
}

// RetreatRequest is the request body for POST retreat.
type RetreatRequest struct {
	ActorID string `json:"actor_id,omitempty"`
}

// JumpRequest is the request body for POST jump.
type JumpRequest struct {
	Stage int `json:"stage"`
}

// ProcessResponse is the response format for GET /api/processes/{id}.
type ProcessResponse struct {
	PropertyID     string          `json:"property_id"`
	CommittedStage int             `json:"committed_stage"`
	Flow           types.Flow      `json:"flow"`
	View           types.ViewState `json:"view"`
	Stages         []types.Stage   `json:"stages"`
}

// HistoryResponse is the response format for GET /api/processes/{id}/history.
type HistoryResponse struct {
	PropertyID string              `json:"property_id"`
	Entries    []*types.AuditEntry `json:"entries"`
}

// TransitionEvent is the WebSocket broadcast payload for a committed
// transition.
type TransitionEvent struct {
	Type        string `json:"type"`
	PropertyID  string `json:"property_id"`
	FromStage   int    `json:"from_stage"`
	ToStage     int    `json:"to_stage"`
	ActorID     string `json:"actor_id,omitempty"`
	CommittedAt string `json:"committed_at"`
}
