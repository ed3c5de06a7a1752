package assign

import (
	"fmt"

	"github.com/stochkit/blockpart/internal/hash"
	"github.com/stochkit/blockpart/types"
)

// DefaultVirtualNodes is the default number of virtual nodes per rank on the
// consistent hash ring.
const DefaultVirtualNodes = 150

// ConsistentHash implements sticky block ownership via consistent hashing.
type ConsistentHash struct {
	virtualNodes int
	hashSeed     uint64
}

var _ types.Assigner = (*ConsistentHash)(nil)

// ConsistentHashOption configures a ConsistentHash strategy.
type ConsistentHashOption func(*ConsistentHash)

// NewConsistentHash creates a consistent hash ownership strategy.
//
// The strategy places every rank on a hash ring with virtual nodes and maps
// each block to the nearest clockwise node. Unlike round robin, ownership is
// sticky under group resizing: rerunning a job with one worker more or less
// moves only the blocks whose ring neighborhood changed, so per-worker engine
// state from an earlier run (factorizations, cut pools) stays useful for most
// blocks.
//
// The trade-off is looser balance: shares are even only in expectation, and a
// group larger than the block count leaves some workers without blocks
// instead of co-owning.
//
// Parameters:
//   - opts: Optional configuration (WithVirtualNodes, WithHashSeed)
//
// Returns:
//   - *ConsistentHash: Initialized consistent hash strategy
//
// Example:
//
//	ldr, err := blockpart.New(&cfg, engine, root,
//	    blockpart.WithAssigner(assign.NewConsistentHash()),
//	)
func NewConsistentHash(opts ...ConsistentHashOption) *ConsistentHash {
	ch := &ConsistentHash{
		virtualNodes: DefaultVirtualNodes,
		hashSeed:     0,
	}

	for _, opt := range opts {
		opt(ch)
	}

	return ch
}

// WithVirtualNodes sets the number of virtual nodes per rank.
//
// Higher values give a more even split at the cost of a larger ring.
// Recommended range: 100-300 (default: 150).
//
// Parameters:
//   - nodes: Number of virtual nodes per rank
//
// Returns:
//   - ConsistentHashOption: Configuration option
func WithVirtualNodes(nodes int) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.virtualNodes = nodes
	}
}

// WithHashSeed sets a custom hash seed.
//
// All workers of a group must use the same seed; different seeds produce
// unrelated rings and the shares no longer tile the block set.
//
// Parameters:
//   - seed: Hash seed value
//
// Returns:
//   - ConsistentHashOption: Configuration option
func WithHashSeed(seed uint64) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.hashSeed = seed
	}
}

// Owned calculates the block ids owned by the worker at topo.Rank.
//
// The algorithm:
//  1. A single-process group owns every block regardless of the policy.
//  2. With reserveCoordinator, rank 0 owns nothing and ranks 1..Size-1 form
//     the ring membership; otherwise all ranks do.
//  3. Each block id hashes onto the ring; the worker keeps the ids that land
//     on its own virtual nodes.
//
// Every block is owned by exactly one rank, so the shares tile the block set
// without co-ownership.
//
// Parameters:
//   - nblocks: Total number of blocks (must be positive)
//   - topo: This worker's position in the process group
//   - reserveCoordinator: Whether rank 0 is excluded from ownership
//
// Returns:
//   - []int: Ascending 1-based owned block ids (possibly empty)
//   - error: types.ErrInvalidConfig for a non-positive block count,
//     types.ErrInvalidTopology for a bad topology
func (ch *ConsistentHash) Owned(nblocks int, topo types.Topology, reserveCoordinator bool) ([]int, error) {
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

	first := 0
	if reserveCoordinator {
		if topo.Rank == 0 {
			return []int{}, nil
		}
		first = 1
	}

	members := make([]int, 0, topo.Size-first)
	for rank := first; rank < topo.Size; rank++ {
		members = append(members, rank)
	}
	ring := hash.NewRing(members, ch.virtualNodes, ch.hashSeed)

	var ids []int
	for id := 1; id <= nblocks; id++ {
		if ring.RankFor(id) == topo.Rank {
			ids = append(ids, id)
		}
	}
	if ids == nil {
		ids = []int{}
	}

	return ids, nil
}
