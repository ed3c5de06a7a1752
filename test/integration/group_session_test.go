package integration_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stochkit/blockpart"
	"github.com/stochkit/blockpart/comm"
	"github.com/stochkit/blockpart/internal/logging"
	"github.com/stochkit/blockpart/model"
	bptest "github.com/stochkit/blockpart/testing"
)

// quietLogger returns a slog-backed logger whose output is discarded. Swap
// the handler for one writing to os.Stderr when debugging a failing run.
func quietLogger() blockpart.Logger {
	return logging.NewSlog(slog.New(slog.DiscardHandler))
}

// buildScenarioModel builds a master with one coupling column (plus
// extraMasterCols padding columns) and the given number of identical
// single-variable scenarios. Every rank of a group must build the identical
// model; extraMasterCols lets a test deliberately break that agreement on
// one rank.
func buildScenarioModel(t *testing.T, scenarios, extraMasterCols int) *model.Block {
	t.Helper()

	root := model.NewBlock()
	x := root.AddColumn(0, 50, 3, blockpart.Continuous)
	for range extraMasterCols {
		root.AddColumn(0, 1, 0, blockpart.Continuous)
	}
	_, err := root.AddRow(0, 50, model.Term{Col: x, Coef: 1})
	require.NoError(t, err)

	weight := 1.0 / float64(scenarios)
	for id := 1; id <= scenarios; id++ {
		child := model.NewBlock()
		require.NoError(t, root.AttachChild(id, weight, child))
		y := child.AddColumn(0, 40, -7, blockpart.Continuous)
		_, err := child.AddRow(-1e30, 5*float64(id),
			model.Term{Col: x, Coef: -1, Parent: true},
			model.Term{Col: y, Coef: 1},
		)
		require.NoError(t, err)
	}

	return root
}

// countPrefix counts recorded engine calls starting with the given prefix.
func countPrefix(calls []string, prefix string) int {
	n := 0
	for _, call := range calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}

	return n
}

// TestGroupSession_LoadAndSolve runs a full session on a three-worker group
// coordinating through an embedded JetStream server: every rank builds the
// same model, loads its share of the blocks, agrees on the global column
// layout, and solves with the group variant of the dual method.
func TestGroupSession_LoadAndSolve(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Parallel()

	const (
		groupSize = 3
		scenarios = 8
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, nc := bptest.StartEmbeddedNATS(t)

	// Each rank builds its own copy of the model, as separate processes
	// would. Models are built here so require stays on the test goroutine.
	models := make([]*model.Block, groupSize)
	for rank := range models {
		models[rank] = buildScenarioModel(t, scenarios, 0)
	}

	engines := make([]*bptest.StubEngine, groupSize)
	loaders := make([]*blockpart.Loader, groupSize)
	owned := make([][]int, groupSize)
	globals := make([]map[int]int, groupSize)

	var g errgroup.Group
	for rank := range groupSize {
		g.Go(func() error {
			c, err := comm.NewNATS(ctx, nc, comm.Config{
				Group: t.Name(),
				Rank:  rank,
				Size:  groupSize,
			})
			if err != nil {
				return fmt.Errorf("rank %d: connect: %w", rank, err)
			}

			engines[rank] = bptest.NewStubEngine()
			cfg := blockpart.TestConfig()
			ldr, err := blockpart.New(&cfg, engines[rank], models[rank],
				blockpart.WithCommunicator(c),
				blockpart.WithMasterVerification(),
				blockpart.WithLogger(quietLogger()),
			)
			if err != nil {
				return fmt.Errorf("rank %d: new: %w", rank, err)
			}
			loaders[rank] = ldr

			if err := ldr.Load(ctx); err != nil {
				return fmt.Errorf("rank %d: load: %w", rank, err)
			}
			owned[rank] = ldr.Owned()

			globals[rank], err = ldr.GlobalBlockColumns(ctx)
			if err != nil {
				return fmt.Errorf("rank %d: global columns: %w", rank, err)
			}

			if err := ldr.Solve(ctx, blockpart.SolveDual); err != nil {
				return fmt.Errorf("rank %d: solve: %w", rank, err)
			}

			res, err := ldr.Result(ctx)
			if err != nil {
				return fmt.Errorf("rank %d: result: %w", rank, err)
			}
			if res.Status != blockpart.StatusOptimal {
				return fmt.Errorf("rank %d: unexpected status %v", rank, res.Status)
			}

			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Every block is owned by exactly one rank.
	seen := make(map[int]int)
	for rank := range owned {
		for _, id := range owned[rank] {
			seen[id]++
		}
	}
	require.Len(t, seen, scenarios, "not all blocks were assigned")
	for id := 1; id <= scenarios; id++ {
		require.Equal(t, 1, seen[id], "block %d owned by %d ranks", id, seen[id])
	}

	wantDims := blockpart.Dimensions{MasterCols: 1, MasterRows: 1, BlockCols: 1, BlockRows: 1}
	for rank := range groupSize {
		engine := engines[rank]
		require.Contains(t, engine.Calls(), fmt.Sprintf("SetBlockCount(%d)", scenarios))
		require.Equal(t, wantDims, engine.Dims(), "rank %d declared different dimensions", rank)
		require.Len(t, engine.BlockIDs(), len(owned[rank]))
		require.Contains(t, engine.Calls(), "SolveDualOn",
			"rank %d did not use the group solve variant", rank)

		// All ranks agree on the global column layout.
		require.Len(t, globals[rank], scenarios)
		require.Equal(t, globals[0], globals[rank], "rank %d computed a different layout", rank)
		for id, cols := range globals[rank] {
			require.Equal(t, 1, cols, "block %d column count", id)
		}
	}

	for rank := range groupSize {
		require.NoError(t, loaders[rank].Close())
		require.True(t, engines[rank].Closed(), "rank %d engine not closed", rank)
		require.Equal(t, blockpart.StateClosed, loaders[rank].State())
	}
}

// TestGroupSession_ReservedCoordinator verifies that reserving the
// coordinator keeps rank 0 free of blocks while it still takes part in every
// collective: it declares the agreed dimensions and observes the full global
// column layout without loading a single block itself.
func TestGroupSession_ReservedCoordinator(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Parallel()

	const (
		groupSize = 3
		scenarios = 8
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, nc := bptest.StartEmbeddedNATS(t)

	models := make([]*model.Block, groupSize)
	for rank := range models {
		models[rank] = buildScenarioModel(t, scenarios, 0)
	}

	engines := make([]*bptest.StubEngine, groupSize)
	loaders := make([]*blockpart.Loader, groupSize)
	owned := make([][]int, groupSize)
	globals := make([]map[int]int, groupSize)

	var g errgroup.Group
	for rank := range groupSize {
		g.Go(func() error {
			c, err := comm.NewNATS(ctx, nc, comm.Config{
				Group: t.Name(),
				Rank:  rank,
				Size:  groupSize,
			})
			if err != nil {
				return fmt.Errorf("rank %d: connect: %w", rank, err)
			}

			engines[rank] = bptest.NewStubEngine()
			cfg := blockpart.TestConfig()
			cfg.ReserveCoordinator = true
			ldr, err := blockpart.New(&cfg, engines[rank], models[rank],
				blockpart.WithCommunicator(c),
				blockpart.WithLogger(quietLogger()),
			)
			if err != nil {
				return fmt.Errorf("rank %d: new: %w", rank, err)
			}
			loaders[rank] = ldr

			if err := ldr.Load(ctx); err != nil {
				return fmt.Errorf("rank %d: load: %w", rank, err)
			}
			owned[rank] = ldr.Owned()

			globals[rank], err = ldr.GlobalBlockColumns(ctx)
			if err != nil {
				return fmt.Errorf("rank %d: global columns: %w", rank, err)
			}

			return nil
		})
	}
	require.NoError(t, g.Wait())

	defer func() {
		for rank := range groupSize {
			require.NoError(t, loaders[rank].Close())
		}
	}()

	// Rank 0 owns nothing and transmitted no blocks.
	require.Empty(t, owned[0])
	require.Empty(t, engines[0].BlockIDs())
	require.Zero(t, countPrefix(engines[0].Calls(), "LoadBlock"))

	// The workers split the whole block set between them.
	require.ElementsMatch(t, []int{1, 3, 5, 7}, owned[1])
	require.ElementsMatch(t, []int{2, 4, 6, 8}, owned[2])

	// The coordinator still agreed on the block shape (its zero
	// contribution is dominated by the workers' observations) and sees the
	// full global column layout.
	wantDims := blockpart.Dimensions{MasterCols: 1, MasterRows: 1, BlockCols: 1, BlockRows: 1}
	for rank := range groupSize {
		require.Equal(t, wantDims, engines[rank].Dims(), "rank %d", rank)
		require.Len(t, globals[rank], scenarios, "rank %d", rank)
	}
}

// TestGroupLoad_DetectsMasterMismatch gives one rank a master block with an
// extra column and verifies that master verification fails the load on every
// rank, releasing the engine model and leaving the sessions in the failed
// state. The sub-block shapes stay identical so the mismatch survives until
// the fingerprint comparison.
func TestGroupLoad_DetectsMasterMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Parallel()

	const (
		groupSize = 3
		scenarios = 4
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, nc := bptest.StartEmbeddedNATS(t)

	models := make([]*model.Block, groupSize)
	for rank := range models {
		extraCols := 0
		if rank == 1 {
			extraCols = 1
		}
		models[rank] = buildScenarioModel(t, scenarios, extraCols)
	}

	engines := make([]*bptest.StubEngine, groupSize)
	loaders := make([]*blockpart.Loader, groupSize)
	loadErrs := make([]error, groupSize)

	var g errgroup.Group
	for rank := range groupSize {
		g.Go(func() error {
			c, err := comm.NewNATS(ctx, nc, comm.Config{
				Group: t.Name(),
				Rank:  rank,
				Size:  groupSize,
			})
			if err != nil {
				return fmt.Errorf("rank %d: connect: %w", rank, err)
			}

			engines[rank] = bptest.NewStubEngine()
			cfg := blockpart.TestConfig()
			ldr, err := blockpart.New(&cfg, engines[rank], models[rank],
				blockpart.WithCommunicator(c),
				blockpart.WithMasterVerification(),
				blockpart.WithLogger(quietLogger()),
			)
			if err != nil {
				return fmt.Errorf("rank %d: new: %w", rank, err)
			}
			loaders[rank] = ldr

			// The load is expected to fail; the verdict is checked on the
			// test goroutine.
			loadErrs[rank] = ldr.Load(ctx)

			return nil
		})
	}
	require.NoError(t, g.Wait())

	for rank := range groupSize {
		require.ErrorIs(t, loadErrs[rank], blockpart.ErrMasterMismatch, "rank %d", rank)
		require.Equal(t, blockpart.StateFailed, loaders[rank].State(), "rank %d", rank)

		// The failure released the engine model but kept the session open.
		require.Contains(t, engines[rank].Calls(), "FreeModel", "rank %d", rank)
		require.False(t, engines[rank].Closed(), "rank %d", rank)
		require.Zero(t, countPrefix(engines[rank].Calls(), "LoadBlock"), "rank %d", rank)
	}
}
