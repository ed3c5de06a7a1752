package types

import (
	"context"
	"time"
)

// Dimensions declares the problem shape to the engine before any block data
// is transmitted.
type Dimensions struct {
	// MasterCols and MasterRows describe the master block.
	MasterCols int
	MasterRows int

	// BlockCols and BlockRows describe the uniform sub-block shape for
	// two-stage problems. Both are zero for layouts where each block
	// declares its own shape.
	BlockCols int
	BlockRows int
}

// Engine is the opaque boundary to a decomposition solver session.
//
// The session is created and owned externally; blockpart drives it but never
// manages its lifetime beyond Close. All operations require a live session:
// once Close has been called, every method fails with an error wrapping
// ErrInvalidSession. Close itself is idempotent.
//
// This interface composes smaller, phase-focused interfaces for better
// modularity: EngineLoader receives problem data, EngineSolver runs solve
// methods, and EngineResults retrieves outcomes.
type Engine interface {
	EngineLoader
	EngineSolver
	EngineResults

	// Close releases the engine session and all resources held by it.
	// Calling Close more than once is a no-op.
	Close() error
}

// EngineLoader receives problem data for a session.
//
// The Loader drives these operations in a fixed order: LoadParams (optional),
// SetBlockCount, SetDimensions, LoadMaster, LoadBlock for each owned block,
// and FinalizeBlocks for layouts that require explicit coupling attachment.
// FreeModel discards partially transmitted data after a failure while keeping
// the session alive for Close.
type EngineLoader interface {
	// LoadParams points the engine at a solver parameter file.
	// The file content is interpreted by the engine alone.
	LoadParams(path string) error

	// SetBlockCount declares the total number of sub-blocks in the problem,
	// counting blocks owned by other workers.
	SetBlockCount(n int) error

	// SetDimensions declares the problem shape.
	SetDimensions(dims Dimensions) error

	// LoadMaster transmits the master block.
	LoadMaster(data *BlockData) error

	// LoadBlock transmits one owned sub-block.
	//
	// Parameters:
	//   - id: 0-based engine block index
	//   - weight: Block weight (probability for two-stage problems)
	//   - data: Wire-format block data
	LoadBlock(id int, weight float64, data *BlockData) error

	// FinalizeBlocks tells the engine that all owned blocks were transmitted
	// and coupling can be attached.
	FinalizeBlocks() error

	// FreeModel discards all transmitted problem data without closing the
	// session.
	FreeModel() error
}

// EngineSolver runs solve methods on a fully loaded session.
//
// The single-process variants solve locally. The *On variants coordinate the
// method across the process group reachable through the supplied
// communicator; the extensive form is inherently monolithic and has no group
// variant.
type EngineSolver interface {
	// SolveDual runs dual decomposition on this process alone.
	SolveDual(ctx context.Context) error

	// SolveDualOn runs dual decomposition coordinated across the group.
	SolveDualOn(ctx context.Context, comm Communicator) error

	// SolveBenders runs Benders decomposition on this process alone.
	SolveBenders(ctx context.Context) error

	// SolveBendersOn runs Benders decomposition coordinated across the group.
	SolveBendersOn(ctx context.Context, comm Communicator) error

	// SolveExtensive solves the extensive form on this process alone.
	SolveExtensive(ctx context.Context) error

	// SolveBranchAndBound runs decomposition-based branch and bound on this
	// process alone.
	SolveBranchAndBound(ctx context.Context) error

	// SolveBranchAndBoundOn runs decomposition-based branch and bound
	// coordinated across the group.
	SolveBranchAndBoundOn(ctx context.Context, comm Communicator) error
}

// EngineResults retrieves outcomes after a solve.
//
// Scalar accessors return engine-reported values and are only meaningful
// once a solve has run. The solution accessors copy engine memory into
// caller-owned slices.
type EngineResults interface {
	// Status returns the terminal status of the last solve.
	Status() SolveStatus

	// Iterations returns the number of method iterations performed.
	Iterations() int

	// Nodes returns the number of branch-and-bound nodes explored.
	Nodes() int

	// WallTime returns the elapsed wall-clock time of the last solve.
	WallTime() time.Duration

	// PrimalBound returns the best primal objective bound.
	PrimalBound() float64

	// DualBound returns the best dual objective bound.
	DualBound() float64

	// CouplingRows returns the number of coupling rows in the problem.
	CouplingRows() int

	// TotalRows returns the total row count of the assembled problem.
	TotalRows() int

	// TotalCols returns the total column count of the assembled problem.
	TotalCols() int

	// PrimalSolution returns the first n primal solution values.
	PrimalSolution(n int) ([]float64, error)

	// DualSolution returns the first n dual values of the coupling rows.
	DualSolution(n int) ([]float64, error)
}
