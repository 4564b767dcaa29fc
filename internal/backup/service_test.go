package backup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/internal/storage/sqlite"
	"github.com/scrypster/saleflow/pkg/types"
)

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "saleflow.db")
	ctx := context.Background()

	store, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, &storage.ProcessRecord{
		PropertyID: "prop-1", CommittedStage: 2, ListingStatus: types.ListingStatusListed,
	}))

	svc, err := NewService(Config{
		DBPath: dbPath,
		Dir:    filepath.Join(dir, "backups"),
		Verify: true,
	})
	require.NoError(t, err)

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Greater(t, result.Size, int64(0))

	// Progress continues after the backup was taken.
	require.NoError(t, store.Commit(ctx, "prop-1", 4))
	require.NoError(t, store.Close())

	require.NoError(t, svc.Restore(result.Path))

	restored, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	defer restored.Close()

	rec, err := restored.Load(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CommittedStage)
}
