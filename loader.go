package blockpart

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/stochkit/blockpart/assign"
	"github.com/stochkit/blockpart/comm"
	"github.com/stochkit/blockpart/format"
	"github.com/stochkit/blockpart/internal/lifecycle"
	"github.com/stochkit/blockpart/internal/logging"
	"github.com/stochkit/blockpart/internal/metrics"
	"github.com/stochkit/blockpart/model"
	"github.com/stochkit/blockpart/types"
)

// Loader partitions a block-structured model across a worker group and
// drives one engine session through loading and solving it.
//
// Every worker in the group constructs a Loader over an identical model and
// calls the same operations in the same order; ownership is computed locally
// and deterministically, so the workers tile the problem without exchanging
// assignments. A Loader owns its engine session from New to Close but never
// creates it.
//
// A Loader is not safe for concurrent use. The engine session is stateful
// and operations must not be retried after a failure; a failed load leaves
// the session in the Failed state where only Close is useful.
type Loader struct {
	cfg      Config
	engine   types.Engine
	model    *model.Block
	comm     types.Communicator
	assigner types.Assigner
	logger   types.Logger
	metrics  types.MetricsCollector

	verifyMaster bool

	machine *lifecycle.Machine

	mu    sync.Mutex
	owned []int // owned child ids, set on successful load
}

// New creates a Loader for one engine session over the given model.
//
// The configuration is defaulted and validated; optional dependencies
// default to a no-op logger, no-op metrics, a single-process communicator,
// and round-robin assignment.
//
// Returns a concrete *Loader following the "accept interfaces, return
// structs" principle.
//
// Parameters:
//   - cfg: Loader configuration (defaults applied in place)
//   - engine: Live engine session (owned by the Loader until Close)
//   - root: Master block with attached sub-blocks; must be identical on
//     every worker of the group
//   - opts: Optional configuration (logger, metrics, communicator, assigner,
//     master verification)
//
// Returns:
//   - *Loader: Initialized loader in the Unloaded state
//   - error: Validation error if configuration or dependencies are invalid
//
// Example:
//
//	cfg := blockpart.DefaultConfig()
//	ldr, err := blockpart.New(&cfg, engine, root,
//	    blockpart.WithCommunicator(groupComm),
//	    blockpart.WithMasterVerification(),
//	)
func New(cfg *Config, engine types.Engine, root *model.Block, opts ...Option) (*Loader, error) {
	if cfg == nil {
		return nil, types.ErrInvalidConfig
	}
	if engine == nil {
		return nil, types.ErrEngineRequired
	}
	if root == nil {
		return nil, types.ErrModelRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Options start from the defaults, so injecting an explicit nil is
	// detectable as a misuse rather than silently restoring the default.
	options := &loaderOptions{
		logger:       logging.NewNop(),
		metrics:      metrics.NewNop(),
		communicator: comm.NewSingle(),
		assigner:     assign.NewRoundRobin(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.communicator == nil {
		return nil, types.ErrCommunicatorRequired
	}
	if options.assigner == nil {
		return nil, types.ErrAssignerRequired
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	topo := types.Topology{Rank: options.communicator.Rank(), Size: options.communicator.Size()}
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	return &Loader{
		cfg:          *cfg,
		engine:       engine,
		model:        root,
		comm:         options.communicator,
		assigner:     options.assigner,
		logger:       options.logger,
		metrics:      options.metrics,
		verifyMaster: options.verifyMaster,
		machine:      lifecycle.NewMachine(options.logger, options.metrics),
	}, nil
}

// Load partitions the model and transmits this worker's share to the engine.
//
// The sequence is: compute ownership, agree on block dimensions with the
// group (stochastic layout), declare counts and dimensions, transmit the
// master block, transmit each owned sub-block, and finalize (structured
// layout). The collectives inside double as group barriers, so no worker
// leaves Load before the whole group has passed the agreement points.
//
// Load runs at most once per Loader. Any failure moves the loader to the
// Failed state, frees partially transmitted engine data, and returns a
// wrapped error; the loader then accepts only Close.
//
// Parameters:
//   - ctx: Context for cancellation; additionally bounded by
//     Config.OperationTimeout
//
// Returns:
//   - error: ErrNoBlocks before any engine call when the model has no
//     sub-blocks; ErrAlreadyLoaded when a load already ran; ErrInvalidSession
//     when the loader failed or was closed; otherwise the first failing
//     step's error
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch state := l.machine.State(); state {
	case types.StateUnloaded:
	case types.StateFailed, types.StateClosed:
		return fmt.Errorf("%w: loader state is %s", types.ErrInvalidSession, state)
	default:
		return fmt.Errorf("%w: loader state is %s", types.ErrAlreadyLoaded, state)
	}

	// Reject an empty model before touching the engine.
	nblocks := l.model.NumBlocks()
	if nblocks == 0 {
		return types.ErrNoBlocks
	}

	if l.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.OperationTimeout)
		defer cancel()
	}

	layout := l.cfg.Layout.String()
	start := time.Now()
	if err := l.load(ctx, nblocks); err != nil {
		l.fail(err)
		l.metrics.RecordLoadAttempt(layout, false)

		return err
	}

	l.metrics.RecordLoadAttempt(layout, true)
	l.metrics.RecordLoadDuration(layout, time.Since(start).Seconds())

	return nil
}

// load runs the loading sequence. The caller holds the mutex and handles
// failure-state bookkeeping.
func (l *Loader) load(ctx context.Context, nblocks int) error {
	if l.cfg.ParamFile != "" {
		if err := l.engine.LoadParams(l.cfg.ParamFile); err != nil {
			return fmt.Errorf("failed to load parameter file %s: %w", l.cfg.ParamFile, err)
		}
	}

	topo := types.Topology{Rank: l.comm.Rank(), Size: l.comm.Size()}
	ordinals, err := l.assigner.Owned(nblocks, topo, l.cfg.ReserveCoordinator)
	if err != nil {
		return fmt.Errorf("failed to compute block ownership: %w", err)
	}
	l.metrics.RecordOwnedBlocks(len(ordinals))

	childIDs := l.model.ChildIDs()
	l.logger.Info("block ownership computed",
		"rank", topo.Rank, "group_size", topo.Size,
		"owned", len(ordinals), "total", nblocks)

	dims := types.Dimensions{
		MasterCols: l.model.NumCols(),
		MasterRows: l.model.NumRows(),
	}
	if l.cfg.Layout == LayoutStochastic {
		cols, rows, err := l.agreeBlockDims(ctx, ordinals, childIDs)
		if err != nil {
			return err
		}
		dims.BlockCols, dims.BlockRows = cols, rows
	}

	if err := l.engine.SetBlockCount(nblocks); err != nil {
		return fmt.Errorf("failed to declare block count: %w", err)
	}
	if err := l.engine.SetDimensions(dims); err != nil {
		return fmt.Errorf("failed to declare dimensions: %w", err)
	}

	master, err := format.Block(l.model)
	if err != nil {
		return fmt.Errorf("failed to format master block: %w", err)
	}
	if l.verifyMaster {
		if err := l.checkMasterAgreement(ctx, master); err != nil {
			return err
		}
	}
	if err := l.engine.LoadMaster(master); err != nil {
		return fmt.Errorf("failed to load master block: %w", err)
	}
	if err := l.machine.TransitionTo(types.StateMasterLoaded); err != nil {
		return err
	}

	owned, err := l.loadBlocks(ordinals, childIDs, master)
	if err != nil {
		return err
	}
	if err := l.machine.TransitionTo(types.StateBlocksLoaded); err != nil {
		return err
	}

	if l.cfg.Layout == LayoutStructured {
		if err := l.engine.FinalizeBlocks(); err != nil {
			return fmt.Errorf("failed to finalize blocks: %w", err)
		}
	}
	if err := l.machine.TransitionTo(types.StateFinalized); err != nil {
		return err
	}

	l.owned = owned

	return nil
}

// agreeBlockDims agrees the uniform sub-block shape across the group.
//
// All locally owned blocks must share one shape; the group-wide shape is the
// elementwise maximum of the local observations, which lets a worker without
// blocks (a reserved coordinator) contribute zeros. A worker whose nonzero
// local shape differs from the agreed one holds a different model than the
// rest of the group.
func (l *Loader) agreeBlockDims(ctx context.Context, ordinals, childIDs []int) (cols, rows int, err error) {
	var local [2]int64
	for i, ordinal := range ordinals {
		id := childIDs[ordinal-1]
		child := l.model.Child(id)
		c, r := int64(child.NumCols()), int64(child.NumRows())
		if i == 0 {
			local[0], local[1] = c, r

			continue
		}
		if local[0] != c || local[1] != r {
			return 0, 0, fmt.Errorf("%w: owned blocks disagree on shape: block %d is %dx%d, expected %dx%d",
				types.ErrDimensionMismatch, id, c, r, local[0], local[1])
		}
	}

	agreed, err := l.comm.AllReduceMax(ctx, local[:])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to agree on block dimensions: %w", err)
	}

	if (local[0] != 0 || local[1] != 0) && (local[0] != agreed[0] || local[1] != agreed[1]) {
		return 0, 0, fmt.Errorf("%w: local block shape %dx%d differs from group shape %dx%d",
			types.ErrDimensionMismatch, local[0], local[1], agreed[0], agreed[1])
	}

	return int(agreed[0]), int(agreed[1]), nil
}

// checkMasterAgreement verifies that every worker formatted an identical
// master block, comparing fingerprints so no block data crosses the wire.
func (l *Loader) checkMasterAgreement(ctx context.Context, master *types.BlockData) error {
	fp := master.Fingerprint()
	all, err := l.comm.AllGather(ctx, []int64{int64(fp)})
	if err != nil {
		return fmt.Errorf("failed to gather master fingerprints: %w", err)
	}

	for rank, vals := range all {
		if len(vals) != 1 || uint64(vals[0]) != fp {
			return fmt.Errorf("%w: rank %d formatted a different master block",
				types.ErrMasterMismatch, rank)
		}
	}

	return nil
}

// loadBlocks formats and transmits this worker's owned blocks, returning the
// owned child ids.
func (l *Loader) loadBlocks(ordinals, childIDs []int, master *types.BlockData) ([]int, error) {
	owned := make([]int, 0, len(ordinals))
	for _, ordinal := range ordinals {
		id := childIDs[ordinal-1]
		child := l.model.Child(id)

		start := time.Now()
		data, err := format.Block(child)
		if err != nil {
			return nil, fmt.Errorf("failed to format block %d: %w", id, err)
		}
		if l.cfg.Layout == LayoutStructured {
			data, err = format.PrefixMaster(master, data)
			if err != nil {
				return nil, fmt.Errorf("failed to prefix master columns onto block %d: %w", id, err)
			}
		}

		if err := l.engine.LoadBlock(ordinal-1, l.model.Weight(id), data); err != nil {
			return nil, fmt.Errorf("failed to load block %d: %w", id, err)
		}
		l.metrics.RecordBlockLoaded(data.Matrix.Nonzeros(), time.Since(start).Seconds())
		owned = append(owned, id)
	}

	return owned, nil
}

// fail moves the loader to the Failed state and frees partial engine data.
func (l *Loader) fail(cause error) {
	l.logger.Error("load failed", "error", cause)

	if err := l.machine.TransitionTo(types.StateFailed); err != nil {
		l.logger.Warn("failed to record failure state", "error", err)
	}
	if err := l.engine.FreeModel(); err != nil {
		l.logger.Warn("failed to free partially loaded model", "error", err)
	}
}

// Owned returns the child ids of the blocks this worker loaded.
//
// The result is empty before a successful Load and for a reserved
// coordinator.
//
// Returns:
//   - []int: Ascending owned child ids (copy, safe to retain)
func (l *Loader) Owned() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.owned)
}

// State returns the current loader state.
//
// This method is thread-safe and can be called concurrently with Load.
func (l *Loader) State() types.LoadState {
	return l.machine.State()
}

// SubscribeState returns a channel receiving loader state changes.
//
// The channel immediately receives the current state, then every
// transition. Slow subscribers miss intermediate states rather than
// blocking the load.
//
// Returns:
//   - <-chan types.LoadState: State notification channel
//   - func(): Unsubscribe function releasing the channel
//
// Example:
//
//	ch, unsubscribe := ldr.SubscribeState()
//	defer unsubscribe()
//	go func() {
//	    for state := range ch {
//	        log.Printf("loader: %s", state)
//	    }
//	}()
func (l *Loader) SubscribeState() (<-chan types.LoadState, func()) {
	return l.machine.Subscribe()
}

// GlobalBlockColumns gathers the global block id → own-column count mapping.
//
// Each worker contributes (id, columns) pairs for its owned blocks; the
// merged view covers every block in the problem. Available after a
// successful Load; acts as a group barrier like all collectives.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - map[int]int: Column count per block id across the whole group
//   - error: ErrInvalidSession before a successful load; transport errors
//     from the collective
func (l *Loader) GlobalBlockColumns(ctx context.Context) (map[int]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state := l.machine.State(); state != types.StateFinalized {
		return nil, fmt.Errorf("%w: global block columns require a finalized load (state %s)",
			types.ErrInvalidSession, state)
	}

	pairs := make([]int64, 0, 2*len(l.owned))
	for _, id := range l.owned {
		pairs = append(pairs, int64(id), int64(l.model.Child(id).NumCols()))
	}

	all, err := l.comm.AllGather(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to gather block columns: %w", err)
	}

	global := make(map[int]int)
	for rank, contrib := range all {
		if len(contrib)%2 != 0 {
			return nil, fmt.Errorf("%w: rank %d contributed %d values, expected pairs",
				types.ErrInvalidBlockData, rank, len(contrib))
		}
		for i := 0; i < len(contrib); i += 2 {
			id, cols := int(contrib[i]), int(contrib[i+1])
			if prev, ok := global[id]; ok && prev != cols {
				return nil, fmt.Errorf("%w: block %d reported with %d and %d columns",
					types.ErrDimensionMismatch, id, prev, cols)
			}
			global[id] = cols
		}
	}

	return global, nil
}

// Close releases the engine session and moves the loader to Closed.
//
// Safe to call multiple times and legal in every state. State subscribers
// receive the Closed notification before their channels close.
//
// Returns:
//   - error: Engine release error, nil otherwise
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.machine.State() == types.StateClosed {
		return nil
	}

	err := l.engine.Close()
	if terr := l.machine.TransitionTo(types.StateClosed); terr != nil {
		l.logger.Warn("failed to record closed state", "error", terr)
	}
	l.machine.Shutdown()

	if err != nil {
		return fmt.Errorf("failed to close engine session: %w", err)
	}

	return nil
}
