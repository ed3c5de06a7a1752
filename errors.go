package blockpart

import "github.com/stochkit/blockpart/types"

// Sentinel errors re-exported from the types subpackage.
//
// The values are shared with the subpackages, so errors.Is works the same
// whether callers reference blockpart.ErrNoBlocks or types.ErrNoBlocks.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrEngineRequired is returned when the engine session is nil.
	ErrEngineRequired = types.ErrEngineRequired

	// ErrModelRequired is returned when the root model block is nil.
	ErrModelRequired = types.ErrModelRequired

	// ErrCommunicatorRequired is returned when a nil communicator is
	// injected.
	ErrCommunicatorRequired = types.ErrCommunicatorRequired

	// ErrAssignerRequired is returned when a nil assigner is injected.
	ErrAssignerRequired = types.ErrAssignerRequired

	// ErrNoBlocks is returned when the model has no sub-blocks to distribute.
	ErrNoBlocks = types.ErrNoBlocks

	// ErrAlreadyLoaded is returned when Load is called more than once.
	ErrAlreadyLoaded = types.ErrAlreadyLoaded

	// ErrInvalidSession is returned for operations against a closed, failed,
	// or not-yet-loaded session.
	ErrInvalidSession = types.ErrInvalidSession

	// ErrMasterMismatch is returned when master verification finds workers
	// holding different master blocks.
	ErrMasterMismatch = types.ErrMasterMismatch

	// ErrUnknownSolveType is returned for an unrecognized solve method.
	ErrUnknownSolveType = types.ErrUnknownSolveType

	// ErrDimensionMismatch is returned when declared and observed problem
	// shapes disagree.
	ErrDimensionMismatch = types.ErrDimensionMismatch

	// ErrInvalidBlockData is returned for structurally inconsistent block
	// data.
	ErrInvalidBlockData = types.ErrInvalidBlockData

	// ErrInvalidTopology is returned for an illegal rank/size pair.
	ErrInvalidTopology = types.ErrInvalidTopology

	// ErrGroupIncomplete is returned when a collective could not observe the
	// whole group in time.
	ErrGroupIncomplete = types.ErrGroupIncomplete
)
