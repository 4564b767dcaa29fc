// Package handlers provides HTTP handlers and middleware for the sale
// process API. Each engine operation maps one-to-one to an endpoint keyed
// by property ID.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/scrypster/saleflow/internal/catalog"
	"github.com/scrypster/saleflow/internal/engine"
	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/pkg/types"
)

// ProcessHandlers serves the sale process API.
type ProcessHandlers struct {
	engine *engine.Engine
}

// NewProcessHandlers creates the process API handlers.
func NewProcessHandlers(eng *engine.Engine) *ProcessHandlers {
	return &ProcessHandlers{engine: eng}
}

// GetProcess handles GET /api/processes/{id}.
func (h *ProcessHandlers) GetProcess(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	state, err := h.engine.State(r.Context(), propertyID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProcessResponse{
		PropertyID:     state.PropertyID,
		CommittedStage: state.CommittedStage,
		Flow:           state.Flow,
		View:           state.View(),
		Stages:         h.engine.Catalog().Stages(),
	})
}

// Advance handles POST /api/processes/{id}/advance.
func (h *ProcessHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	var req TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.engine.Advance(r.Context(), propertyID, req.ActorID, types.Snapshot{
		Documents: req.Documents,
		Proposals: req.Proposals,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Retreat handles POST /api/processes/{id}/retreat.
func (h *ProcessHandlers) Retreat(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	var req RetreatRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.engine.Retreat(r.Context(), propertyID, req.ActorID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Jump handles POST /api/processes/{id}/jump.
func (h *ProcessHandlers) Jump(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	var req JumpRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.engine.JumpTo(r.Context(), propertyID, req.Stage)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Finalize handles POST /api/processes/{id}/finalize.
func (h *ProcessHandlers) Finalize(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	var req TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.engine.Finalize(r.Context(), propertyID, req.ActorID, types.Snapshot{
		Documents: req.Documents,
		Proposals: req.Proposals,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// History handles GET /api/processes/{id}/history.
func (h *ProcessHandlers) History(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("id")

	entries, err := h.engine.History(r.Context(), propertyID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history", err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{PropertyID: propertyID, Entries: entries})
}

// Health handles GET /api/health.
func (h *ProcessHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body. An empty body is allowed and
// leaves the destination zero-valued: advancing without a snapshot is a
// legitimate call in the operational flow.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondEngineError maps engine errors to HTTP responses. Usage errors
// (caller requested an operation inconsistent with the state) map to 409,
// unknown stages and inputs to 400, persistence failures to 503. Blocked
// transitions are not errors and never reach this function.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrAlreadyTerminal),
		errors.Is(err, engine.ErrAtInitialStage),
		errors.Is(err, engine.ErrFutureStageLocked),
		errors.Is(err, engine.ErrNotAtFinalStage):
		// Caller misuse: log at higher severity than a routine block.
		log.Printf("handlers: usage error: %v", err)
		respondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, catalog.ErrUnknownStage),
		errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, engine.ErrPersistenceFailed):
		log.Printf("handlers: persistence failure: %v", err)
		respondError(w, http.StatusServiceUnavailable, "persistence failed, safe to retry", nil)
	default:
		log.Printf("handlers: internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; log and move on.
		log.Printf("handlers: failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{"error": err.Error()}
	}
	respondJSON(w, statusCode, errResp)
}
