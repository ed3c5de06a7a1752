package types

import "fmt"

// Topology describes a worker's position inside its process group.
//
// The group is fixed for the lifetime of a session: Rank identifies this
// worker (0-based) and Size is the total number of workers. A single-process
// session uses Topology{Rank: 0, Size: 1}.
type Topology struct {
	// Rank is this worker's 0-based position in the group.
	Rank int

	// Size is the total number of workers in the group.
	Size int
}

// Validate checks that the topology describes a legal group position.
//
// Returns:
//   - error: nil when 0 <= Rank < Size; otherwise an error wrapping
//     ErrInvalidTopology
func (t Topology) Validate() error {
	if t.Size < 1 {
		return fmt.Errorf("%w: group size %d is not positive", ErrInvalidTopology, t.Size)
	}
	if t.Rank < 0 || t.Rank >= t.Size {
		return fmt.Errorf("%w: rank %d outside group of size %d", ErrInvalidTopology, t.Rank, t.Size)
	}

	return nil
}

// Assigner decides which blocks a worker owns.
//
// Every worker evaluates the assigner locally with identical inputs, so the
// group reaches a consistent global ownership picture without exchanging any
// messages.
//
// Assigner implementations should:
//   - Be deterministic (same input → same output)
//   - Be pure (no side effects, no stored state)
//   - Return block ids in ascending order
type Assigner interface {
	// Owned returns the ordered 1-based ids of the blocks this worker owns.
	//
	// When reserveCoordinator is true and the group has more than one
	// worker, rank 0 owns no blocks and acts as a pure coordinator; the
	// remaining workers share all blocks. A single-process group always
	// owns every block regardless of the flag.
	//
	// Parameters:
	//   - nblocks: Total number of blocks to distribute (must be positive)
	//   - topo: This worker's position in the process group
	//   - reserveCoordinator: Whether rank 0 is excluded from ownership
	//
	// Returns:
	//   - []int: Ascending 1-based block ids owned by this worker (possibly empty)
	//   - error: Configuration error for a non-positive block count or an
	//     invalid topology
	Owned(nblocks int, topo Topology, reserveCoordinator bool) ([]int, error)
}
