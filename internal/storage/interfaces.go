// Package storage provides the persistence contracts for the sale process
// engine.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently: ProcessStore is the persistence adapter the
// engine commits through, AuditStore is the append-only transition trail.
package storage

import (
	"context"

	"github.com/scrypster/saleflow/pkg/types"
)

// ProcessStore persists the committed stage of sale processes. The engine
// calls it synchronously inside a transition, after the guard has passed and
// before it mutates any in-memory state.
//
// Commit and CommitWithStatusChange must be idempotent under retry: calling
// either twice with the same new stage (e.g. after a timeout-and-retry)
// produces no side effects beyond the first successful call.
type ProcessStore interface {
	// Load retrieves the process record for a property.
	// Returns ErrNotFound if the property has not entered the sale pipeline.
	Load(ctx context.Context, propertyID string) (*ProcessRecord, error)

	// Create inserts a new process record at stage 0 with the given listing
	// status. Creating an already-existing process is an upsert no-op so
	// that bootstrap races are harmless.
	Create(ctx context.Context, record *ProcessRecord) error

	// Commit durably sets the committed stage for a property.
	// Returns ErrNotFound if the process does not exist.
	Commit(ctx context.Context, propertyID string, newStage int) error

	// CommitWithStatusChange sets the committed stage and the listing status
	// as one atomic write. Used by finalize: the listing must never end up
	// sold while the stage is non-terminal, or vice versa.
	CommitWithStatusChange(ctx context.Context, propertyID string, newStage int, newStatus string) error

	// Close releases any resources held by the store.
	Close() error
}

// AuditStore records committed transitions. Entries are append-only and are
// never mutated or deleted.
type AuditStore interface {
	// Append stores one audit entry.
	Append(ctx context.Context, entry *types.AuditEntry) error

	// ListByProperty returns the audit trail for a property, ordered oldest
	// first. Returns an empty slice (not an error) when no transitions have
	// been recorded.
	ListByProperty(ctx context.Context, propertyID string) ([]*types.AuditEntry, error)

	// Close releases any resources held by the store.
	Close() error
}
