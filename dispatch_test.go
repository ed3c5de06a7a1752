package blockpart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bptest "github.com/stochkit/blockpart/testing"
)

// loadedLoader builds and loads a two-block stochastic problem over the given
// group size, returning the loader and its engine.
func loadedLoader(t *testing.T, size int) (*Loader, *bptest.StubEngine) {
	t.Helper()

	engine := bptest.NewStubEngine()
	cfg := TestConfig()
	ldr, err := New(&cfg, engine, twoStageModel(t, 2),
		WithCommunicator(&fakeComm{rank: 0, size: size}))
	require.NoError(t, err)
	require.NoError(t, ldr.Load(t.Context()))

	return ldr, engine
}

func TestSolve_SelectionTable(t *testing.T) {
	tests := []struct {
		name string
		st   SolveType
		size int
		want string
	}{
		{name: "dual single process", st: SolveDual, size: 1, want: "SolveDual"},
		{name: "dual group", st: SolveDual, size: 3, want: "SolveDualOn"},
		{name: "benders single process", st: SolveBenders, size: 1, want: "SolveBenders"},
		{name: "benders group", st: SolveBenders, size: 3, want: "SolveBendersOn"},
		{name: "extensive single process", st: SolveExtensive, size: 1, want: "SolveExtensive"},
		{name: "extensive group stays local", st: SolveExtensive, size: 3, want: "SolveExtensive"},
		{name: "branch and bound single process", st: SolveBranchAndBound, size: 1, want: "SolveBranchAndBound"},
		{name: "branch and bound group", st: SolveBranchAndBound, size: 3, want: "SolveBranchAndBoundOn"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ldr, engine := loadedLoader(t, tc.size)
			before := len(engine.Calls())

			require.NoError(t, ldr.Solve(t.Context(), tc.st))

			// Exactly one engine solve call per dispatch.
			calls := engine.Calls()
			require.Len(t, calls, before+1)
			require.Equal(t, tc.want, calls[before])
		})
	}
}

func TestSolve_DefaultsToSingleProcess(t *testing.T) {
	engine := bptest.NewStubEngine()
	cfg := TestConfig()
	ldr, err := New(&cfg, engine, twoStageModel(t, 2))
	require.NoError(t, err)
	require.NoError(t, ldr.Load(t.Context()))

	require.NoError(t, ldr.Solve(t.Context(), SolveDual))
	require.Contains(t, engine.Calls(), "SolveDual")
}

func TestSolve_RequiresFinalized(t *testing.T) {
	engine := bptest.NewStubEngine()
	cfg := TestConfig()
	ldr, err := New(&cfg, engine, twoStageModel(t, 2))
	require.NoError(t, err)

	require.ErrorIs(t, ldr.Solve(t.Context(), SolveDual), ErrInvalidSession)
	require.Empty(t, engine.Calls())
}

func TestSolve_UnknownType(t *testing.T) {
	ldr, engine := loadedLoader(t, 1)
	before := len(engine.Calls())

	err := ldr.Solve(t.Context(), SolveType(99))
	require.ErrorIs(t, err, ErrUnknownSolveType)
	require.Len(t, engine.Calls(), before)
}

func TestSolve_EngineErrorKeepsSessionAlive(t *testing.T) {
	ldr, engine := loadedLoader(t, 1)
	boom := errors.New("no convergence")
	engine.Fail["SolveDual"] = boom

	err := ldr.Solve(t.Context(), SolveDual)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "failed to solve (dual)")

	// A failed solve does not invalidate the loaded problem.
	require.Equal(t, StateFinalized, ldr.State())
	require.NoError(t, ldr.Solve(t.Context(), SolveBenders))
}

func TestResult(t *testing.T) {
	ldr, engine := loadedLoader(t, 1)
	engine.Results = bptest.StubResults{
		Status:      StatusOptimal,
		Iterations:  7,
		Nodes:       3,
		WallTime:    1500 * time.Millisecond,
		PrimalBound: 12.5,
		DualBound:   12.1,
		Primal:      []float64{1, 2},
		Dual:        []float64{9},
	}

	require.NoError(t, ldr.Solve(t.Context(), SolveBranchAndBound))

	res, err := ldr.Result(t.Context())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	require.Equal(t, 7, res.Iterations)
	require.Equal(t, 3, res.Nodes)
	require.Equal(t, 1500*time.Millisecond, res.WallTime)
	require.InDelta(t, 12.5, res.PrimalBound, 1e-12)
	require.InDelta(t, 12.1, res.DualBound, 1e-12)

	// Primal covers the assembled column space (2 master + 2 block columns),
	// dual covers the coupling rows; both zero-padded past the seeded values.
	require.Equal(t, []float64{1, 2, 0, 0}, res.Primal)
	require.Equal(t, []float64{9}, res.Dual)

	require.InDelta(t, 0.032, res.Gap(), 1e-3)
}

func TestResult_BeforeSolve(t *testing.T) {
	ldr, _ := loadedLoader(t, 1)

	res, err := ldr.Result(t.Context())
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, res.Status)
}

func TestResult_RequiresFinalized(t *testing.T) {
	cfg := TestConfig()
	ldr, err := New(&cfg, bptest.NewStubEngine(), twoStageModel(t, 2))
	require.NoError(t, err)

	_, err = ldr.Result(t.Context())
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResult_CancelledContext(t *testing.T) {
	ldr, _ := loadedLoader(t, 1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := ldr.Result(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
