package assign

import (
	"fmt"

	"github.com/stochkit/blockpart/types"
)

// RoundRobin implements deterministic round-robin block ownership.
type RoundRobin struct{}

var _ types.Assigner = (*RoundRobin)(nil)

// NewRoundRobin creates a new round-robin ownership strategy.
//
// The strategy distributes block ids cyclically across the group by modular
// arithmetic, so each worker can compute its own share without communication
// and the shares always combine to the full block set.
//
// Returns:
//   - *RoundRobin: Initialized round-robin strategy
//
// Example:
//
//	loader, err := blockpart.New(&cfg, engine, root,
//	    blockpart.WithAssigner(assign.NewRoundRobin()),
//	)
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Owned calculates the block ids owned by the worker at topo.Rank.
//
// The algorithm:
//  1. A single-process group owns every block regardless of the policy.
//  2. With reserveCoordinator, rank 0 owns nothing and the remaining
//     size-1 workers walk the blocks starting at (rank-1) mod nblocks.
//  3. Otherwise all size workers walk the blocks starting at rank mod nblocks.
//
// The walk visits modrank+1, modrank+1+step, ... up to nblocks, where step is
// the number of owning workers. Groups larger than the block count wrap: the
// same block appears in several workers' shares and the engine parallelizes
// within it.
//
// Parameters:
//   - nblocks: Total number of blocks (must be positive)
//   - topo: This worker's position in the process group
//   - reserveCoordinator: Whether rank 0 is excluded from ownership
//
// Returns:
//   - []int: Ascending 1-based owned block ids (empty for a reserved coordinator)
//   - error: types.ErrInvalidConfig for a non-positive block count,
//     types.ErrInvalidTopology for a bad topology
func (rr *RoundRobin) Owned(nblocks int, topo types.Topology, reserveCoordinator bool) ([]int, error) {
	if nblocks < 1 {
		return nil, fmt.Errorf("%w: block count %d is not positive", types.ErrInvalidConfig, nblocks)
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	// Degenerate group: the only worker owns everything, coordinator
	// reservation included.
	if topo.Size == 1 {
		ids := make([]int, nblocks)
		for i := range ids {
			ids[i] = i + 1
		}

		return ids, nil
	}

	var modrank, step int
	if reserveCoordinator {
		if topo.Rank == 0 {
			return []int{}, nil
		}
		modrank = (topo.Rank - 1) % nblocks
		step = topo.Size - 1
	} else {
		modrank = topo.Rank % nblocks
		step = topo.Size
	}

	ids := make([]int, 0, (nblocks-modrank+step-1)/step)
	for id := modrank + 1; id <= nblocks; id += step {
		ids = append(ids, id)
	}

	return ids, nil
}
