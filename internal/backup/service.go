package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Service performs scheduled backups of the sale process database.
type Service struct {
	cfg Config

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	lastBackup time.Time
}

// NewService validates the configuration, fills defaults, and creates the
// backup directory.
func NewService(cfg Config) (*Service, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("backup: database path is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup: backup directory is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention.Hourly == 0 {
		cfg.Retention.Hourly = 24
	}
	if cfg.Retention.Daily == 0 {
		cfg.Retention.Daily = 7
	}
	if cfg.Retention.Weekly == 0 {
		cfg.Retention.Weekly = 4
	}
	if cfg.Retention.Monthly == 0 {
		cfg.Retention.Monthly = 12
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("backup: failed to create backup directory: %w", err)
	}

	return &Service{cfg: cfg, stopCh: make(chan struct{})}, nil
}

// Start runs the backup loop until the context is cancelled or Stop is
// called. It blocks, so run it in its own goroutine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("backup: service is already running")
	}
	s.running = true
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	log.Printf("backup: service started: interval=%v dir=%s", s.cfg.Interval, s.cfg.Dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			result, err := s.Run(ctx)
			if err != nil {
				log.Printf("backup: scheduled backup failed: %v", err)
				continue
			}
			log.Printf("backup: wrote %s (%d bytes in %v, verified=%v)",
				result.Path, result.Size, result.Duration, result.Verified)
		}
	}
}

// Stop ends the backup loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.running = false
	}
}

// Run performs one backup: snapshot the database, optionally verify it, and
// prune old backups per the retention policy.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(s.cfg.DBPath); err != nil {
		return nil, fmt.Errorf("backup: database not found: %w", err)
	}

	// Microseconds in the name keep rapid manual backups from colliding.
	name := fmt.Sprintf("saleflow-backup-%s.db", start.Format("20060102-150405.000000"))
	path := filepath.Join(s.cfg.Dir, name)

	if err := snapshotSQLite(s.cfg.DBPath, path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("backup: failed to stat backup: %w", err)
	}

	result := &Result{Path: path, Size: info.Size(), Duration: time.Since(start)}

	if s.cfg.Verify {
		if err := verifySQLite(path); err != nil {
			return nil, fmt.Errorf("backup: verification failed: %w", err)
		}
		result.Verified = true
	}

	s.mu.Lock()
	s.lastBackup = time.Now()
	s.mu.Unlock()

	// Retention failures never fail the backup that just succeeded.
	if err := applyRetention(s.cfg.Dir, s.cfg.Retention); err != nil {
		log.Printf("backup: WARNING: retention pass failed: %v", err)
	}

	return result, nil
}

// List returns the stored backups, newest first.
func (s *Service) List() ([]Info, error) {
	return listBackups(s.cfg.Dir)
}

// Restore replaces the live database with a backup. The service and every
// open store handle must be stopped first; the previous database is kept
// alongside as a pre-restore copy until the restore verifies.
func (s *Service) Restore(backupPath string) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return fmt.Errorf("backup: cannot restore while the backup service is running")
	}

	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup: backup not found: %w", err)
	}

	preRestore := s.cfg.DBPath + ".pre-restore"
	if _, err := os.Stat(s.cfg.DBPath); err == nil {
		if err := snapshotSQLite(s.cfg.DBPath, preRestore); err != nil {
			return fmt.Errorf("backup: failed to snapshot current database: %w", err)
		}
	}

	if err := restoreSQLite(backupPath, s.cfg.DBPath); err != nil {
		return err
	}

	os.Remove(preRestore)
	log.Printf("backup: database restored from %s", backupPath)
	return nil
}
