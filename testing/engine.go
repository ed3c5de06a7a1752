package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/stochkit/blockpart/types"
)

// StubResults configures what a StubEngine reports after a solve.
type StubResults struct {
	Status      types.SolveStatus
	Iterations  int
	Nodes       int
	WallTime    time.Duration
	PrimalBound float64
	DualBound   float64

	// Primal and Dual seed the solution vectors. Requests longer than the
	// configured slice are zero-padded.
	Primal []float64
	Dual   []float64
}

// StubEngine is an in-memory types.Engine for tests and examples.
//
// It records every call in order, enforces the live-session rule (all
// operations after Close fail with ErrInvalidSession) and the load-call
// ordering a real engine expects, and reports configurable solve results.
// Problem shape accessors derive their values from the transmitted data.
//
// The zero value is not usable; construct with NewStubEngine.
type StubEngine struct {
	mu sync.Mutex

	// Results configures the values reported after a solve. Set entries
	// before calling a solve method.
	Results StubResults

	// Fail maps a method name (for example "LoadMaster") to an error the
	// stub returns when that method is called. Used for failure-path tests.
	Fail map[string]error

	calls  []string
	closed bool
	solved bool

	paramFile  string
	blockCount int
	countSet   bool
	dims       types.Dimensions
	dimsSet    bool

	master  *types.BlockData
	blocks  map[int]*types.BlockData
	weights map[int]float64
}

// Compile-time assertion that StubEngine implements Engine.
var _ types.Engine = (*StubEngine)(nil)

// NewStubEngine creates a stub engine reporting an optimal solve by default.
func NewStubEngine() *StubEngine {
	return &StubEngine{
		Results: StubResults{
			Status:     types.StatusOptimal,
			Iterations: 1,
		},
		Fail:    make(map[string]error),
		blocks:  make(map[int]*types.BlockData),
		weights: make(map[int]float64),
	}
}

// record logs the call and applies the live-session and fault-injection
// rules shared by every method. Callers must hold the mutex.
func (e *StubEngine) record(call, method string) error {
	if e.closed {
		return fmt.Errorf("%w: %s on closed engine", types.ErrInvalidSession, method)
	}
	e.calls = append(e.calls, call)
	if err, ok := e.Fail[method]; ok {
		return err
	}

	return nil
}

// LoadParams records the parameter file path.
func (e *StubEngine) LoadParams(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("LoadParams", "LoadParams"); err != nil {
		return err
	}
	e.paramFile = path

	return nil
}

// SetBlockCount records the declared total number of sub-blocks.
func (e *StubEngine) SetBlockCount(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(fmt.Sprintf("SetBlockCount(%d)", n), "SetBlockCount"); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("block count must be positive, got %d", n)
	}
	e.blockCount = n
	e.countSet = true

	return nil
}

// SetDimensions records the declared problem shape.
func (e *StubEngine) SetDimensions(dims types.Dimensions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetDimensions", "SetDimensions"); err != nil {
		return err
	}
	if !e.countSet {
		return fmt.Errorf("SetDimensions before SetBlockCount")
	}
	e.dims = dims
	e.dimsSet = true

	return nil
}

// LoadMaster records the master block.
func (e *StubEngine) LoadMaster(data *types.BlockData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("LoadMaster", "LoadMaster"); err != nil {
		return err
	}
	if !e.dimsSet {
		return fmt.Errorf("LoadMaster before SetDimensions")
	}
	if data == nil {
		return fmt.Errorf("LoadMaster with nil data")
	}
	e.master = data

	return nil
}

// LoadBlock records one sub-block.
func (e *StubEngine) LoadBlock(id int, weight float64, data *types.BlockData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(fmt.Sprintf("LoadBlock(%d)", id), "LoadBlock"); err != nil {
		return err
	}
	if e.master == nil {
		return fmt.Errorf("LoadBlock before LoadMaster")
	}
	if id < 0 || id >= e.blockCount {
		return fmt.Errorf("block id %d outside declared count %d", id, e.blockCount)
	}
	if _, dup := e.blocks[id]; dup {
		return fmt.Errorf("block id %d loaded twice", id)
	}
	if weight <= 0 {
		return fmt.Errorf("block %d weight must be positive, got %v", id, weight)
	}
	if data == nil {
		return fmt.Errorf("LoadBlock with nil data")
	}
	e.blocks[id] = data
	e.weights[id] = weight

	return nil
}

// FinalizeBlocks records the end of block transmission.
func (e *StubEngine) FinalizeBlocks() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("FinalizeBlocks", "FinalizeBlocks"); err != nil {
		return err
	}
	if e.master == nil {
		return fmt.Errorf("FinalizeBlocks before LoadMaster")
	}

	return nil
}

// FreeModel discards all transmitted data, keeping the session alive.
func (e *StubEngine) FreeModel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("FreeModel", "FreeModel"); err != nil {
		return err
	}
	e.master = nil
	e.blocks = make(map[int]*types.BlockData)
	e.weights = make(map[int]float64)
	e.countSet = false
	e.dimsSet = false

	return nil
}

// solve applies the shared rules for all solve methods.
func (e *StubEngine) solve(ctx context.Context, method string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record(method, method); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.master == nil {
		return fmt.Errorf("%s before model load", method)
	}
	e.solved = true

	return nil
}

// SolveDual records a local dual decomposition solve.
func (e *StubEngine) SolveDual(ctx context.Context) error {
	return e.solve(ctx, "SolveDual")
}

// SolveDualOn records a group dual decomposition solve.
func (e *StubEngine) SolveDualOn(ctx context.Context, _ types.Communicator) error {
	return e.solve(ctx, "SolveDualOn")
}

// SolveBenders records a local Benders solve.
func (e *StubEngine) SolveBenders(ctx context.Context) error {
	return e.solve(ctx, "SolveBenders")
}

// SolveBendersOn records a group Benders solve.
func (e *StubEngine) SolveBendersOn(ctx context.Context, _ types.Communicator) error {
	return e.solve(ctx, "SolveBendersOn")
}

// SolveExtensive records an extensive-form solve.
func (e *StubEngine) SolveExtensive(ctx context.Context) error {
	return e.solve(ctx, "SolveExtensive")
}

// SolveBranchAndBound records a local branch-and-bound solve.
func (e *StubEngine) SolveBranchAndBound(ctx context.Context) error {
	return e.solve(ctx, "SolveBranchAndBound")
}

// SolveBranchAndBoundOn records a group branch-and-bound solve.
func (e *StubEngine) SolveBranchAndBoundOn(ctx context.Context, _ types.Communicator) error {
	return e.solve(ctx, "SolveBranchAndBoundOn")
}

// Status returns the configured status, or StatusUnknown before any solve.
func (e *StubEngine) Status() types.SolveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.solved {
		return types.StatusUnknown
	}

	return e.Results.Status
}

// Iterations returns the configured iteration count.
func (e *StubEngine) Iterations() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Results.Iterations
}

// Nodes returns the configured node count.
func (e *StubEngine) Nodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Results.Nodes
}

// WallTime returns the configured wall-clock time.
func (e *StubEngine) WallTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Results.WallTime
}

// PrimalBound returns the configured primal bound.
func (e *StubEngine) PrimalBound() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Results.PrimalBound
}

// DualBound returns the configured dual bound.
func (e *StubEngine) DualBound() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Results.DualBound
}

// CouplingRows derives the coupling row count from the master block.
func (e *StubEngine) CouplingRows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.master == nil {
		return 0
	}

	return e.master.NumRows()
}

// TotalRows derives the assembled row count from the transmitted data.
func (e *StubEngine) TotalRows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	if e.master != nil {
		n += e.master.NumRows()
	}
	for _, b := range e.blocks {
		n += b.NumRows()
	}

	return n
}

// TotalCols derives the assembled column count from the transmitted data.
func (e *StubEngine) TotalCols() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	if e.master != nil {
		n += e.master.NumCols()
	}
	for _, b := range e.blocks {
		n += b.NumCols()
	}

	return n
}

// PrimalSolution returns the first n configured primal values, zero-padded.
func (e *StubEngine) PrimalSolution(n int) ([]float64, error) {
	return e.solution(n, func() []float64 { return e.Results.Primal })
}

// DualSolution returns the first n configured dual values, zero-padded.
func (e *StubEngine) DualSolution(n int) ([]float64, error) {
	return e.solution(n, func() []float64 { return e.Results.Dual })
}

func (e *StubEngine) solution(n int, src func() []float64) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("%w: solution request on closed engine", types.ErrInvalidSession)
	}
	if n < 0 {
		return nil, fmt.Errorf("solution length must not be negative, got %d", n)
	}

	vec := make([]float64, n)
	copy(vec, src())

	return vec, nil
}

// Close marks the session closed. Subsequent calls are no-ops.
func (e *StubEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.calls = append(e.calls, "Close")
	e.closed = true

	return nil
}

// Calls returns the recorded call sequence.
func (e *StubEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.calls)
}

// Closed reports whether Close has been called.
func (e *StubEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

// ParamFile returns the recorded parameter file path.
func (e *StubEngine) ParamFile() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paramFile
}

// BlockCount returns the declared total number of sub-blocks.
func (e *StubEngine) BlockCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.blockCount
}

// Dims returns the declared problem shape.
func (e *StubEngine) Dims() types.Dimensions {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.dims
}

// Master returns the transmitted master block, or nil.
func (e *StubEngine) Master() *types.BlockData {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.master
}

// Block returns the transmitted block for an engine id, with its weight.
func (e *StubEngine) Block(id int) (*types.BlockData, float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.blocks[id]
	if !ok {
		return nil, 0, false
	}

	return data, e.weights[id], true
}

// BlockIDs returns the loaded engine block ids in ascending order.
func (e *StubEngine) BlockIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int, 0, len(e.blocks))
	for id := range e.blocks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}
