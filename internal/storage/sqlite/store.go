// Package sqlite provides the SQLite implementation of the sale process
// storage interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/pkg/types"
)

// Store implements storage.ProcessStore and storage.AuditStore using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, configures WAL mode, and applies the
// schema. Use ":memory:" for an in-memory database in tests.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode lets readers proceed without blocking the
	// writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing with SQLITE_BUSY when the connection is held
	// by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB returns the underlying database connection.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load retrieves the process record for a property.
func (s *Store) Load(ctx context.Context, propertyID string) (*storage.ProcessRecord, error) {
	var rec storage.ProcessRecord
	var createdAt, updatedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT property_id, committed_stage, listing_status, created_at, updated_at
		FROM sale_processes
		WHERE property_id = ?
	`, propertyID).Scan(&rec.PropertyID, &rec.CommittedStage, &rec.ListingStatus, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load process %s: %w", propertyID, err)
	}

	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return &rec, nil
}

// Create inserts a new process record. Inserting an existing property is a
// no-op so that bootstrap races are harmless.
func (s *Store) Create(ctx context.Context, record *storage.ProcessRecord) error {
	if record == nil || record.PropertyID == "" {
		return fmt.Errorf("sqlite: %w: property ID is required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_processes (property_id, committed_stage, listing_status)
		VALUES (?, ?, ?)
		ON CONFLICT(property_id) DO NOTHING
	`, record.PropertyID, record.CommittedStage, record.ListingStatus)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create process %s: %w", record.PropertyID, err)
	}
	return nil
}

// Commit durably sets the committed stage. Committing the same stage twice
// is a no-op beyond the first call, which makes crash-and-retry safe.
func (s *Store) Commit(ctx context.Context, propertyID string, newStage int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sale_processes
		SET committed_stage = ?, updated_at = CURRENT_TIMESTAMP
		WHERE property_id = ?
	`, newStage, propertyID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to commit stage %d for %s: %w", newStage, propertyID, err)
	}
	return checkAffected(result, propertyID)
}

// CommitWithStatusChange sets the committed stage and the listing status in
// a single statement, so the two can never diverge.
func (s *Store) CommitWithStatusChange(ctx context.Context, propertyID string, newStage int, newStatus string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sale_processes
		SET committed_stage = ?, listing_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE property_id = ?
	`, newStage, newStatus, propertyID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to commit stage %d with status %s for %s: %w",
			newStage, newStatus, propertyID, err)
	}
	return checkAffected(result, propertyID)
}

// Append stores one audit entry.
func (s *Store) Append(ctx context.Context, entry *types.AuditEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("sqlite: %w: audit entry ID is required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transition_audit (id, property_id, from_stage, to_stage, actor_id, committed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.PropertyID, entry.FromStage, entry.ToStage, entry.ActorID, entry.CommittedAt.UTC())
	if err != nil {
		return fmt.Errorf("sqlite: failed to append audit entry for %s: %w", entry.PropertyID, err)
	}
	return nil
}

// ListByProperty returns the audit trail for a property, oldest first.
func (s *Store) ListByProperty(ctx context.Context, propertyID string) ([]*types.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, from_stage, to_stage, actor_id, committed_at
		FROM transition_audit
		WHERE property_id = ?
		ORDER BY committed_at ASC, id ASC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list audit entries for %s: %w", propertyID, err)
	}
	defer rows.Close()

	entries := []*types.AuditEntry{}
	for rows.Next() {
		var e types.AuditEntry
		var committedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.FromStage, &e.ToStage, &e.ActorID, &committedAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan audit entry: %w", err)
		}
		e.CommittedAt = committedAt.Time
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

// checkAffected maps a zero-row update to ErrNotFound.
func checkAffected(result sql.Result, propertyID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read rows affected for %s: %w", propertyID, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
