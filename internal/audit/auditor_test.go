package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/saleflow/pkg/types"
)

type stubAuditStore struct {
	entries   []*types.AuditEntry
	appendErr error
}

func (s *stubAuditStore) Append(ctx context.Context, entry *types.AuditEntry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *stubAuditStore) ListByProperty(ctx context.Context, propertyID string) ([]*types.AuditEntry, error) {
	var out []*types.AuditEntry
	for _, e := range s.entries {
		if e.PropertyID == propertyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubAuditStore) Close() error { return nil }

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	store := &stubAuditStore{}
	auditor := New(store, PolicyBestEffort)

	entry := types.AuditEntry{PropertyID: "prop-1", FromStage: 1, ToStage: 2, ActorID: "agent:ana"}
	require.NoError(t, auditor.Record(context.Background(), &entry))

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CommittedAt.IsZero())
	require.Len(t, store.entries, 1)
	assert.Equal(t, entry.ID, store.entries[0].ID)
}

func TestRecordPreservesCallerTimestamp(t *testing.T) {
	store := &stubAuditStore{}
	auditor := New(store, PolicyBestEffort)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := types.AuditEntry{PropertyID: "prop-1", FromStage: 0, ToStage: 1, CommittedAt: at}
	require.NoError(t, auditor.Record(context.Background(), &entry))

	assert.Equal(t, at, store.entries[0].CommittedAt)
}

func TestBestEffortSwallowsWriteFailure(t *testing.T) {
	store := &stubAuditStore{appendErr: errors.New("disk full")}
	auditor := New(store, PolicyBestEffort)

	entry := types.AuditEntry{PropertyID: "prop-1", FromStage: 1, ToStage: 2}
	assert.NoError(t, auditor.Record(context.Background(), &entry))
}

func TestStrictReturnsWriteFailure(t *testing.T) {
	writeErr := errors.New("disk full")
	store := &stubAuditStore{appendErr: writeErr}
	auditor := New(store, PolicyStrict)

	entry := types.AuditEntry{PropertyID: "prop-1", FromStage: 1, ToStage: 2}
	err := auditor.Record(context.Background(), &entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
}

func TestEmptyPolicyDefaultsToBestEffort(t *testing.T) {
	store := &stubAuditStore{appendErr: errors.New("down")}
	auditor := New(store, "")

	assert.NoError(t, auditor.Record(context.Background(), &types.AuditEntry{PropertyID: "p"}))
}

func TestHistoryFiltersByProperty(t *testing.T) {
	store := &stubAuditStore{}
	auditor := New(store, PolicyBestEffort)
	ctx := context.Background()

	require.NoError(t, auditor.Record(ctx, &types.AuditEntry{PropertyID: "a", FromStage: 0, ToStage: 1}))
	require.NoError(t, auditor.Record(ctx, &types.AuditEntry{PropertyID: "b", FromStage: 0, ToStage: 1}))
	require.NoError(t, auditor.Record(ctx, &types.AuditEntry{PropertyID: "a", FromStage: 1, ToStage: 2}))

	entries, err := auditor.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].ToStage)
	assert.Equal(t, 2, entries[1].ToStage)
}
