package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBackupFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("backup"), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestListBackupsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeBackupFile(t, dir, "saleflow-backup-old.db", 2*time.Hour)
	writeBackupFile(t, dir, "saleflow-backup-new.db", time.Minute)
	writeBackupFile(t, dir, "notes.txt", time.Minute)

	backups, err := listBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Contains(t, backups[0].Path, "new")
	assert.Contains(t, backups[1].Path, "old")
}

func TestRetentionCapsHourlyTier(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 5; i++ {
		paths = append(paths, writeBackupFile(t, dir,
			"saleflow-backup-"+string(rune('a'+i))+".db",
			time.Duration(i+1)*time.Hour))
	}

	policy := RetentionPolicy{Hourly: 2, Daily: 7, Weekly: 4, Monthly: 12}
	require.NoError(t, applyRetention(dir, policy))

	backups, err := listBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 2)

	// The two newest survive.
	assert.Equal(t, paths[0], backups[0].Path)
	assert.Equal(t, paths[1], backups[1].Path)
}

func TestRetentionAlwaysDropsAncientBackups(t *testing.T) {
	dir := t.TempDir()
	writeBackupFile(t, dir, "saleflow-backup-ancient.db", 400*24*time.Hour)
	keep := writeBackupFile(t, dir, "saleflow-backup-recent.db", time.Hour)

	require.NoError(t, applyRetention(dir, RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}))

	backups, err := listBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, keep, backups[0].Path)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = NewService(Config{DBPath: "x.db"})
	assert.Error(t, err)

	svc, err := NewService(Config{DBPath: "x.db", Dir: filepath.Join(t.TempDir(), "backups")})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
