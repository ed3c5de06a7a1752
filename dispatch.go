package blockpart

import (
	"context"
	"fmt"
	"time"

	"github.com/stochkit/blockpart/types"
)

// Solve runs one decomposition method on the finalized problem.
//
// The method variant follows the group size: a multi-worker group dispatches
// to the engine's group-coordinated variant with the loader's communicator,
// a single-process group dispatches to the local variant. The extensive form
// is inherently monolithic and always takes the local call. Exactly one
// engine solve call is made per invocation.
//
// Every worker of the group must call Solve with the same solve type; the
// group-coordinated variants synchronize through the communicator.
//
// Parameters:
//   - ctx: Context for cancellation and timeout, passed through to the engine
//   - st: Solve method to run
//
// Returns:
//   - error: ErrInvalidSession unless the loader is in the Finalized state;
//     ErrUnknownSolveType for an unsupported method; otherwise the engine's
//     error
//
// Example:
//
//	if err := ldr.Solve(ctx, blockpart.SolveDual); err != nil {
//	    log.Fatalf("solve failed: %v", err)
//	}
func (l *Loader) Solve(ctx context.Context, st types.SolveType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state := l.machine.State(); state != types.StateFinalized {
		return fmt.Errorf("%w: solve requires a finalized load (state %s)",
			types.ErrInvalidSession, state)
	}
	if !st.Valid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownSolveType, int(st))
	}

	group := l.comm.Size() > 1
	l.logger.Info("dispatching solve", "method", st.String(), "group", group)

	start := time.Now()

	var err error
	switch st {
	case types.SolveDual:
		if group {
			err = l.engine.SolveDualOn(ctx, l.comm)
		} else {
			err = l.engine.SolveDual(ctx)
		}
	case types.SolveBenders:
		if group {
			err = l.engine.SolveBendersOn(ctx, l.comm)
		} else {
			err = l.engine.SolveBenders(ctx)
		}
	case types.SolveExtensive:
		// Monolithic by construction; each worker solves the full problem
		// locally even inside a group.
		err = l.engine.SolveExtensive(ctx)
	case types.SolveBranchAndBound:
		if group {
			err = l.engine.SolveBranchAndBoundOn(ctx, l.comm)
		} else {
			err = l.engine.SolveBranchAndBound(ctx)
		}
	}

	method := st.String()
	l.metrics.RecordSolveAttempt(method, err == nil)
	if err != nil {
		return fmt.Errorf("failed to solve (%s): %w", method, err)
	}
	l.metrics.RecordSolveDuration(method, time.Since(start).Seconds())

	return nil
}

// Result retrieves the outcome of the last solve from the engine.
//
// Scalar fields carry engine-reported values. The primal solution covers the
// engine's total column count and the dual solution its coupling-row count;
// either vector is nil when the corresponding count is zero.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - *types.SolveResult: Solve outcome with solution vectors
//   - error: ErrInvalidSession unless the loader is in the Finalized state;
//     engine errors from solution retrieval
func (l *Loader) Result(ctx context.Context) (*types.SolveResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if state := l.machine.State(); state != types.StateFinalized {
		return nil, fmt.Errorf("%w: results require a finalized load (state %s)",
			types.ErrInvalidSession, state)
	}

	res := &types.SolveResult{
		Status:      l.engine.Status(),
		Iterations:  l.engine.Iterations(),
		Nodes:       l.engine.Nodes(),
		WallTime:    l.engine.WallTime(),
		PrimalBound: l.engine.PrimalBound(),
		DualBound:   l.engine.DualBound(),
	}

	if n := l.engine.TotalCols(); n > 0 {
		primal, err := l.engine.PrimalSolution(n)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve primal solution: %w", err)
		}
		res.Primal = primal
	}
	if n := l.engine.CouplingRows(); n > 0 {
		dual, err := l.engine.DualSolution(n)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve dual solution: %w", err)
		}
		res.Dual = dual
	}

	return res, nil
}
