// Package backup provides automated backups of the sale process database
// with tiered retention and integrity verification. The process records and
// audit trail are the record of how a sale progressed, so they are backed up
// on a schedule rather than on demand.
package backup

import "time"

// Config holds backup service configuration.
type Config struct {
	// DBPath is the SQLite database file to back up.
	DBPath string

	// Dir is where backups are stored.
	Dir string

	// Interval between scheduled backups (default: 1 hour).
	Interval time.Duration

	// Retention controls how many backups survive in each age tier.
	Retention RetentionPolicy

	// Verify runs an integrity check on every backup after writing it.
	Verify bool
}

// RetentionPolicy caps the number of backups kept per age tier. Backups
// older than a year are always removed.
type RetentionPolicy struct {
	Hourly  int // backups younger than 24h (default: 24)
	Daily   int // 1 to 7 days old (default: 7)
	Weekly  int // 7 to 30 days old (default: 4)
	Monthly int // 30 to 365 days old (default: 12)
}

// Info describes one stored backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Result describes one completed backup run.
type Result struct {
	Path     string
	Size     int64
	Duration time.Duration
	Verified bool
}
