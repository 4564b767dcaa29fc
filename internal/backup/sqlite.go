package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite" // SQLite driver
)

// snapshotSQLite writes a consistent point-in-time copy of a SQLite
// database. VACUUM INTO handles WAL mode correctly: readers and the writer
// keep going while the snapshot is taken.
func snapshotSQLite(sourcePath, destPath string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", sourcePath))
	if err != nil {
		return fmt.Errorf("backup: failed to open source database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("backup: failed to ping source database: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return fmt.Errorf("backup: snapshot failed: %w", err)
	}
	return nil
}

// verifySQLite runs SQLite's integrity check against a backup file.
func verifySQLite(path string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return fmt.Errorf("backup: failed to open backup: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("backup: integrity check failed to run: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup: integrity check failed: %s", result)
	}
	return nil
}

// restoreSQLite copies a verified backup over the target database file.
func restoreSQLite(backupPath, targetPath string) error {
	if err := verifySQLite(backupPath); err != nil {
		return err
	}

	src, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("backup: failed to open backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("backup: failed to create target file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("backup: failed to copy backup: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return fmt.Errorf("backup: failed to sync target file: %w", err)
	}

	return verifySQLite(targetPath)
}
