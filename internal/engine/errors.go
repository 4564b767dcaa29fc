package engine

import "errors"

// Usage errors: the caller requested an operation inconsistent with the
// current state. These signal a bug in the caller, not a condition the user
// can fix, and are surfaced distinctly from blocked transitions.
var (
	// ErrAlreadyTerminal is returned when advancing or finalizing a process
	// whose committed stage is already terminal.
	ErrAlreadyTerminal = errors.New("process already at terminal stage")

	// ErrAtInitialStage is returned when retreating a process whose
	// committed stage is 0.
	ErrAtInitialStage = errors.New("process already at initial stage")

	// ErrFutureStageLocked is returned when jumping the view cursor past the
	// committed stage. Future stages cannot be inspected.
	ErrFutureStageLocked = errors.New("future stages are locked")

	// ErrNotAtFinalStage is returned when finalizing a process that has not
	// yet reached the last pre-terminal stage.
	ErrNotAtFinalStage = errors.New("process is not at the final pre-terminal stage")
)

// ErrPersistenceFailed wraps a failed or timed-out store commit. The
// transition is aborted with no state change and is safe to retry: commits
// are idempotent.
var ErrPersistenceFailed = errors.New("persistence failed")
