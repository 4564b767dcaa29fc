// Package engine implements the sale process state machine: guarded stage
// transitions over a dual-cursor process state.
//
// Each process carries two pointers. The committed stage is the durable
// "current progress" and only moves through a successful guarded commit.
// The view cursor is ephemeral and lets a user inspect already-completed
// stages without the inspection being mistaken for undoing progress —
// collapsing the two into one pointer was identified as a correctness risk
// and is deliberately avoided.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scrypster/saleflow/internal/audit"
	"github.com/scrypster/saleflow/internal/catalog"
	"github.com/scrypster/saleflow/internal/gate"
	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/pkg/types"
)

// Config holds configuration for the engine.
type Config struct {
	// CommitTimeout bounds each store commit. A timed-out commit is treated
	// as a persistence failure and leaves the process state unchanged
	// (default: 5s).
	CommitTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{CommitTimeout: 5 * time.Second}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.CommitTimeout <= 0 {
		return fmt.Errorf("CommitTimeout must be > 0, got %v", c.CommitTimeout)
	}
	return nil
}

// Engine drives sale processes through the stage pipeline. All mutating
// operations on one property are serialized by a per-process lock, so two
// concurrent advances cannot both pass the guard and both commit.
type Engine struct {
	catalog *catalog.Catalog
	store   storage.ProcessStore
	auditor *audit.Auditor
	config  Config

	mu        sync.Mutex
	processes map[string]*process

	// onCommitted, when set, is invoked after every successful commit.
	// Used to broadcast transitions to live listeners.
	onCommitted func(entry types.AuditEntry)
}

// process pairs a process state with its mutual-exclusion lock.
type process struct {
	mu     sync.Mutex
	loaded bool
	state  types.ProcessState
}

// New creates a sale process engine.
func New(cat *catalog.Catalog, store storage.ProcessStore, auditor *audit.Auditor, cfg Config) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	if store == nil {
		return nil, fmt.Errorf("engine: process store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("engine: auditor is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config: %w", err)
	}

	return &Engine{
		catalog:   cat,
		store:     store,
		auditor:   auditor,
		config:    cfg,
		processes: make(map[string]*process),
	}, nil
}

// SetOnCommitted registers a callback invoked after every successful commit,
// with the audit entry describing the transition. Must be called before the
// engine starts serving requests.
func (e *Engine) SetOnCommitted(fn func(entry types.AuditEntry)) {
	e.onCommitted = fn
}

// Catalog returns the stage catalog the engine runs on.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// State returns a copy of the current process state for a property, loading
// or bootstrapping the process on first touch.
func (e *Engine) State(ctx context.Context, propertyID string) (types.ProcessState, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return types.ProcessState{}, err
	}
	defer p.mu.Unlock()
	return copyState(&p.state), nil
}

// ViewState returns the caller-facing view position for a property.
func (e *Engine) ViewState(ctx context.Context, propertyID string) (types.ViewState, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return types.ViewState{}, err
	}
	defer p.mu.Unlock()
	return p.state.View(), nil
}

// CommittedStage returns the durable progress pointer for a property.
func (e *Engine) CommittedStage(ctx context.Context, propertyID string) (int, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	defer p.mu.Unlock()
	return p.state.CommittedStage, nil
}

// Advance moves a process one stage forward.
//
// When the view cursor lags behind the committed stage, Advance is pure
// view navigation: it moves the cursor one step toward the committed stage
// without re-checking guards or touching persistence. Otherwise it checks
// the flow's guard against the snapshot, commits the next stage, records an
// audit entry, and clears the cursor so the caller resumes following live
// progress.
//
// Advancing into the terminal stage is the finalize transition and performs
// the joint stage+status commit, preserving the invariant that a terminal
// stage and a sold listing status only ever appear together.
func (e *Engine) Advance(ctx context.Context, propertyID, actorID string, snap types.Snapshot) (*types.TransitionResult, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer p.mu.Unlock()
	st := &p.state

	if st.IsHistorical() {
		cursor := *st.ViewCursor + 1
		st.ViewCursor = &cursor
		return okResult(st), nil
	}

	next, ok := e.catalog.Next(st.CommittedStage)
	if !ok {
		return nil, fmt.Errorf("%w: stage %d", ErrAlreadyTerminal, st.CommittedStage)
	}

	if res := e.checkGuard(st, snap); res != nil {
		return res, nil
	}

	return e.commit(ctx, st, next, actorID, next == e.catalog.MaxStage())
}

// Retreat moves a process one stage backward.
//
// While the view cursor is strictly behind the committed stage the caller
// is browsing history, and Retreat just decrements the cursor with floor 0:
// browsing never touches committed state, persistence, or the audit trail.
// At the live stage (cursor nil or equal to committed) Retreat commits the
// previous stage and records it.
func (e *Engine) Retreat(ctx context.Context, propertyID, actorID string) (*types.TransitionResult, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer p.mu.Unlock()
	st := &p.state

	if st.IsHistorical() {
		if *st.ViewCursor > 0 {
			cursor := *st.ViewCursor - 1
			st.ViewCursor = &cursor
		}
		return okResult(st), nil
	}

	prev, ok := e.catalog.Previous(st.CommittedStage)
	if !ok {
		return nil, fmt.Errorf("%w", ErrAtInitialStage)
	}

	return e.commit(ctx, st, prev, actorID, false)
}

// JumpTo points the view cursor at an already-reached stage for inspection.
// It never mutates the committed stage. Jumping past the committed stage
// fails with ErrFutureStageLocked and leaves the state unchanged.
func (e *Engine) JumpTo(ctx context.Context, propertyID string, stageID int) (*types.TransitionResult, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer p.mu.Unlock()
	st := &p.state

	if _, err := e.catalog.Get(stageID); err != nil {
		return nil, err
	}
	if stageID > st.CommittedStage {
		return nil, fmt.Errorf("%w: stage %d is ahead of committed stage %d",
			ErrFutureStageLocked, stageID, st.CommittedStage)
	}

	cursor := stageID
	st.ViewCursor = &cursor
	return okResult(st), nil
}

// Finalize performs the terminal transition. It is only legal from the last
// pre-terminal stage, requires that stage's own guard, and commits the
// terminal stage together with the "sold" listing status as one atomic
// write. If either half of the joint commit fails, no state changes.
func (e *Engine) Finalize(ctx context.Context, propertyID, actorID string, snap types.Snapshot) (*types.TransitionResult, error) {
	p, err := e.acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer p.mu.Unlock()
	st := &p.state

	next, ok := e.catalog.Next(st.CommittedStage)
	if !ok {
		return nil, fmt.Errorf("%w: stage %d", ErrAlreadyTerminal, st.CommittedStage)
	}
	if next != e.catalog.MaxStage() {
		return nil, fmt.Errorf("%w: committed stage is %d", ErrNotAtFinalStage, st.CommittedStage)
	}

	if res := e.checkGuard(st, snap); res != nil {
		return res, nil
	}

	return e.commit(ctx, st, next, actorID, true)
}

// History returns the audit trail for a property, oldest first.
func (e *Engine) History(ctx context.Context, propertyID string) ([]*types.AuditEntry, error) {
	return e.auditor.History(ctx, propertyID)
}

// checkGuard evaluates the flow's advancement guard against the snapshot.
// It returns a blocked result when the guard fails, nil when the advance
// may proceed.
func (e *Engine) checkGuard(st *types.ProcessState, snap types.Snapshot) *types.TransitionResult {
	switch st.Flow {
	case types.FlowStrict:
		// Strict flow: every boundary is gated on the current stage's
		// document completeness.
		stage, err := e.catalog.Get(st.CommittedStage)
		if err != nil {
			// Committed stage is always in range; Get cannot fail here.
			return nil
		}
		res := gate.DocumentsSatisfied(stage, snap.Documents)
		if !res.Met {
			return &types.TransitionResult{
				Outcome:          types.OutcomeBlocked,
				View:             st.View(),
				MissingDocuments: res.Missing,
			}
		}

	default:
		// Operational flow: advancement is unconditional except at the
		// proposal boundary.
		if st.CommittedStage == e.catalog.ProposalGateStage() {
			res := gate.ProposalGateSatisfied(snap.Proposals)
			if !res.Met {
				return &types.TransitionResult{
					Outcome:        types.OutcomeBlocked,
					View:           st.View(),
					ProposalReason: res.Reason,
				}
			}
		}
	}
	return nil
}

// commit durably writes the new stage (and, for the terminal transition, the
// sold status), records the audit entry, and only then mutates the in-memory
// state. Commit-then-mutate ordering: a failed commit leaves both cursors
// untouched.
func (e *Engine) commit(ctx context.Context, st *types.ProcessState, newStage int, actorID string, withStatus bool) (*types.TransitionResult, error) {
	cctx, cancel := context.WithTimeout(ctx, e.config.CommitTimeout)
	defer cancel()

	var err error
	if withStatus {
		err = e.store.CommitWithStatusChange(cctx, st.PropertyID, newStage, types.ListingStatusSold)
	} else {
		err = e.store.Commit(cctx, st.PropertyID, newStage)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: commit stage %d for %s: %v", ErrPersistenceFailed, newStage, st.PropertyID, err)
	}

	entry := types.AuditEntry{
		PropertyID:  st.PropertyID,
		FromStage:   st.CommittedStage,
		ToStage:     newStage,
		ActorID:     actorID,
		CommittedAt: time.Now().UTC(),
	}
	auditErr := e.auditor.Record(ctx, &entry)

	st.CommittedStage = newStage
	st.ViewCursor = nil
	st.UpdatedAt = time.Now().UTC()

	if e.onCommitted != nil {
		e.onCommitted(entry)
	}

	if auditErr != nil {
		// Strict audit policy: the commit stands (the store is the source of
		// truth) but the caller learns the trail is incomplete.
		return nil, auditErr
	}
	return okResult(st), nil
}

// acquire returns the process for a property with its lock held, loading or
// bootstrapping it from the store on first touch. The caller must unlock.
func (e *Engine) acquire(ctx context.Context, propertyID string) (*process, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("engine: %w: property ID is required", storage.ErrInvalidInput)
	}

	e.mu.Lock()
	p, ok := e.processes[propertyID]
	if !ok {
		p = &process{}
		e.processes[propertyID] = p
	}
	e.mu.Unlock()

	p.mu.Lock()
	if p.loaded {
		return p, nil
	}

	rec, err := e.store.Load(ctx, propertyID)
	if errors.Is(err, storage.ErrNotFound) {
		// First touch: the listing enters the sale pipeline at stage 0.
		rec = &storage.ProcessRecord{
			PropertyID:     propertyID,
			CommittedStage: 0,
			ListingStatus:  types.ListingStatusPrivate,
		}
		if createErr := e.store.Create(ctx, rec); createErr != nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: create process for %s: %v", ErrPersistenceFailed, propertyID, createErr)
		}
	} else if err != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: load process for %s: %v", ErrPersistenceFailed, propertyID, err)
	}

	if rec.CommittedStage < 0 || rec.CommittedStage > e.catalog.MaxStage() {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: persisted stage %d for %s", catalog.ErrUnknownStage, rec.CommittedStage, propertyID)
	}

	// The flow is derived from the listing status exactly once, at load
	// time, and stays fixed for the lifetime of the instance.
	p.state = types.ProcessState{
		PropertyID:     propertyID,
		CommittedStage: rec.CommittedStage,
		Flow:           types.FlowForListingStatus(rec.ListingStatus),
		UpdatedAt:      rec.UpdatedAt,
	}
	p.loaded = true
	return p, nil
}

func okResult(st *types.ProcessState) *types.TransitionResult {
	return &types.TransitionResult{Outcome: types.OutcomeOK, View: st.View()}
}

func copyState(st *types.ProcessState) types.ProcessState {
	cp := *st
	if st.ViewCursor != nil {
		cursor := *st.ViewCursor
		cp.ViewCursor = &cursor
	}
	return cp
}
