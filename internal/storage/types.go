package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// ProcessRecord is the durable representation of a sale process. Only the
// committed stage and listing status are persisted; the view cursor is
// process-local and never stored.
type ProcessRecord struct {
	PropertyID     string
	CommittedStage int
	ListingStatus  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
