package types

import "errors"

// Sentinel errors for the blockpart library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Loader, Dispatcher, Communicator, etc.)
//   - Use consistent messages across similar error types

// Loader errors - Public API errors returned by the Loader component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEngineRequired is returned when the solver engine is nil.
	ErrEngineRequired = errors.New("solver engine is required")

	// ErrModelRequired is returned when the root model is nil.
	ErrModelRequired = errors.New("root model is required")

	// ErrCommunicatorRequired is returned when a nil communicator is injected.
	ErrCommunicatorRequired = errors.New("communicator is required")

	// ErrAssignerRequired is returned when a nil assigner is injected.
	ErrAssignerRequired = errors.New("assigner is required")

	// ErrNoBlocks is returned when the model defines no sub-blocks.
	// Detected before any engine call is made.
	ErrNoBlocks = errors.New("model has no sub-blocks")

	// ErrAlreadyLoaded is returned when Load is called on a loader that
	// already transmitted the problem.
	ErrAlreadyLoaded = errors.New("problem already loaded")

	// ErrInvalidSession is returned when an operation requires a live engine
	// session but the session is closed, failed, or not yet in the state the
	// operation needs.
	ErrInvalidSession = errors.New("invalid or closed solver session")

	// ErrMasterMismatch is returned when cross-worker verification detects
	// that workers hold different master block data.
	ErrMasterMismatch = errors.New("master block data differs across workers")
)

// Dispatcher errors - Errors returned by the solve dispatcher.
var (
	// ErrUnknownSolveType is returned when a solve type is not one of the
	// supported methods. This is a configuration error.
	ErrUnknownSolveType = errors.New("unknown solve type")
)

// Data errors - Shared validation errors for model and block data.
var (
	// ErrDimensionMismatch is returned when array lengths, declared
	// dimensions, or cross-worker dimension agreement disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidBlockData is returned when block data is structurally sound
	// but carries invalid content, such as an unknown column type code.
	ErrInvalidBlockData = errors.New("invalid block data")
)

// Assignment errors - Errors returned by block ownership strategies.
var (
	// ErrInvalidTopology is returned when a process topology has a
	// non-positive group size or an out-of-range rank.
	ErrInvalidTopology = errors.New("invalid process topology")
)

// Communicator errors - Errors returned by process-group collectives.
var (
	// ErrGroupIncomplete is returned when a collective operation gives up
	// before observing contributions from every group member.
	ErrGroupIncomplete = errors.New("collective incomplete: missing group members")
)
