package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Create(ctx, &storage.ProcessRecord{
		PropertyID:     "prop-1",
		CommittedStage: 0,
		ListingStatus:  types.ListingStatusPrivate,
	})
	require.NoError(t, err)

	rec, err := store.Load(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "prop-1", rec.PropertyID)
	assert.Equal(t, 0, rec.CommittedStage)
	assert.Equal(t, types.ListingStatusPrivate, rec.ListingStatus)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestCreateExistingIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &storage.ProcessRecord{
		PropertyID: "prop-1", CommittedStage: 3, ListingStatus: types.ListingStatusListed,
	}))

	// A racing bootstrap must not reset existing progress.
	require.NoError(t, store.Create(ctx, &storage.ProcessRecord{
		PropertyID: "prop-1", CommittedStage: 0, ListingStatus: types.ListingStatusPrivate,
	}))

	rec, err := store.Load(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.CommittedStage)
	assert.Equal(t, types.ListingStatusListed, rec.ListingStatus)
}

func TestCreateRejectsEmptyPropertyID(t *testing.T) {
	store := newTestStore(t)

	err := store.Create(context.Background(), &storage.ProcessRecord{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestCommitIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &storage.ProcessRecord{
		PropertyID: "prop-1", ListingStatus: types.ListingStatusPrivate,
	}))

	// A retry after a lost acknowledgement re-commits the same stage.
	require.NoError(t, store.Commit(ctx, "prop-1", 1))
	require.NoError(t, store.Commit(ctx, "prop-1", 1))

	rec, err := store.Load(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CommittedStage)
}

func TestCommitMissingProcessReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Commit(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommitWithStatusChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &storage.ProcessRecord{
		PropertyID: "prop-1", CommittedStage: 4, ListingStatus: types.ListingStatusListed,
	}))

	require.NoError(t, store.CommitWithStatusChange(ctx, "prop-1", 5, types.ListingStatusSold))

	rec, err := store.Load(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.CommittedStage)
	assert.Equal(t, types.ListingStatusSold, rec.ListingStatus)
}

func TestAuditTrailOrderedOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, &types.AuditEntry{
			ID:          string(rune('a' + i)),
			PropertyID:  "prop-1",
			FromStage:   i,
			ToStage:     i + 1,
			ActorID:     "agent:ana",
			CommittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// Entry for another property must not leak into the trail.
	require.NoError(t, store.Append(ctx, &types.AuditEntry{
		ID: "x", PropertyID: "prop-2", FromStage: 0, ToStage: 1, CommittedAt: base,
	}))

	entries, err := store.ListByProperty(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i, e.FromStage)
		assert.Equal(t, i+1, e.ToStage)
		assert.Equal(t, "agent:ana", e.ActorID)
	}
}

func TestAuditTrailEmptyForUnknownProperty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.ListByProperty(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendRejectsMissingID(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(context.Background(), &types.AuditEntry{PropertyID: "prop-1"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
