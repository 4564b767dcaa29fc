package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the persistence circuit breaker is open
// and rejects commits to prevent hammering a failing backend.
var ErrCircuitOpen = errors.New("persistence circuit breaker is open")

// BreakerConfig holds the configuration for the persistence circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip the
	// circuit. Default: 3.
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning to
	// half-open. Default: 30 seconds.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes required
	// in half-open state to close the circuit again. Default: 2.
	HalfOpenMaxSuccesses uint32
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	}
}

// BreakerStore wraps a ProcessStore with a circuit breaker so that a failing
// database trips fast and surfaces a persistence failure to the engine
// instead of stacking up slow commits.
//
// Only mutating calls go through the breaker; Load stays direct so that
// read-only view operations keep working while the circuit is open.
type BreakerStore struct {
	inner   ProcessStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner ProcessStore, cfg BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "ProcessStoreBreaker",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("storage: circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Load retrieves the process record directly from the inner store.
func (b *BreakerStore) Load(ctx context.Context, propertyID string) (*ProcessRecord, error) {
	return b.inner.Load(ctx, propertyID)
}

// Create inserts a new process record through the breaker.
func (b *BreakerStore) Create(ctx context.Context, record *ProcessRecord) error {
	return b.execute(ctx, func() error {
		return b.inner.Create(ctx, record)
	})
}

// Commit durably sets the committed stage through the breaker.
func (b *BreakerStore) Commit(ctx context.Context, propertyID string, newStage int) error {
	return b.execute(ctx, func() error {
		return b.inner.Commit(ctx, propertyID, newStage)
	})
}

// CommitWithStatusChange performs the joint stage+status commit through the
// breaker.
func (b *BreakerStore) CommitWithStatusChange(ctx context.Context, propertyID string, newStage int, newStatus string) error {
	return b.execute(ctx, func() error {
		return b.inner.CommitWithStatusChange(ctx, propertyID, newStage, newStatus)
	})
}

// Close closes the inner store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// State returns the current breaker state: "closed", "open" or "half-open".
func (b *BreakerStore) State() string {
	switch b.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func (b *BreakerStore) execute(ctx context.Context, fn func() error) error {
	// A cancelled context counts as a failed commit; don't touch the backend.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}
