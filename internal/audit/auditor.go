// Package audit provides the transition auditor: it records every committed
// stage transition for traceability and powers the "what stage were we at,
// and when" history queries.
package audit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/pkg/types"
)

// Policy controls how an audit write failure affects the transition that
// produced it. Whether a failed audit write should block a user-facing
// transition is a product decision, so it is configurable rather than fixed.
type Policy string

const (
	// PolicyBestEffort logs audit write failures as operator warnings and
	// lets the transition stand. This is the default.
	PolicyBestEffort Policy = "best_effort"

	// PolicyStrict propagates audit write failures to the caller.
	PolicyStrict Policy = "strict"
)

// Auditor records committed transitions through an AuditStore.
type Auditor struct {
	store  storage.AuditStore
	policy Policy
}

// New creates an auditor with the given write-failure policy. An empty
// policy defaults to best-effort.
func New(store storage.AuditStore, policy Policy) *Auditor {
	if policy == "" {
		policy = PolicyBestEffort
	}
	return &Auditor{store: store, policy: policy}
}

// Record appends one transition to the audit trail. It fills in the entry ID
// and timestamp when the caller left them zero.
//
// Under PolicyBestEffort a write failure is logged and swallowed; under
// PolicyStrict it is returned to the caller.
func (a *Auditor) Record(ctx context.Context, entry *types.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CommittedAt.IsZero() {
		entry.CommittedAt = time.Now().UTC()
	}

	if err := a.store.Append(ctx, entry); err != nil {
		if a.policy == PolicyStrict {
			return fmt.Errorf("audit: failed to record transition %d -> %d for %s: %w",
				entry.FromStage, entry.ToStage, entry.PropertyID, err)
		}
		log.Printf("audit: WARNING: failed to record transition %d -> %d for %s: %v",
			entry.FromStage, entry.ToStage, entry.PropertyID, err)
		return nil
	}
	return nil
}

// History returns the audit trail for a property, ordered oldest first.
func (a *Auditor) History(ctx context.Context, propertyID string) ([]*types.AuditEntry, error) {
	return a.store.ListByProperty(ctx, propertyID)
}
