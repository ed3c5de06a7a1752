package blockpart

import "github.com/stochkit/blockpart/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `blockpart`
// package, while still providing a convenient `blockpart.LoadState`,
// `blockpart.Engine`, etc. for users.
type (
	LoadState   = types.LoadState
	SolveType   = types.SolveType
	SolveStatus = types.SolveStatus
	SolveResult = types.SolveResult
	BlockData   = types.BlockData
	VarType     = types.VarType
	ObjSense    = types.ObjSense
	Topology    = types.Topology
	Dimensions  = types.Dimensions
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Engine           = types.Engine
	EngineLoader     = types.EngineLoader
	EngineSolver     = types.EngineSolver
	EngineResults    = types.EngineResults
	Communicator     = types.Communicator
	Assigner         = types.Assigner
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export LoadState constants from the types subpackage.
const (
	StateUnloaded     = types.StateUnloaded
	StateMasterLoaded = types.StateMasterLoaded
	StateBlocksLoaded = types.StateBlocksLoaded
	StateFinalized    = types.StateFinalized
	StateFailed       = types.StateFailed
	StateClosed       = types.StateClosed
)

// Re-export SolveType constants from the types subpackage.
const (
	SolveDual           = types.SolveDual
	SolveBenders        = types.SolveBenders
	SolveExtensive      = types.SolveExtensive
	SolveBranchAndBound = types.SolveBranchAndBound
)

// Re-export SolveStatus constants from the types subpackage.
const (
	StatusUnknown        = types.StatusUnknown
	StatusOptimal        = types.StatusOptimal
	StatusInfeasible     = types.StatusInfeasible
	StatusUnbounded      = types.StatusUnbounded
	StatusIterationLimit = types.StatusIterationLimit
	StatusTimeLimit      = types.StatusTimeLimit
	StatusAborted        = types.StatusAborted
)

// Re-export variable type and objective sense constants.
const (
	Continuous = types.Continuous
	Integer    = types.Integer
	Binary     = types.Binary

	Minimize = types.Minimize
	Maximize = types.Maximize
)
