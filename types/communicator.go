package types

import "context"

// Communicator provides collective operations over a fixed process group.
//
// The group membership is established externally and does not change during a
// session. All collectives are symmetric: every group member must call the
// same operations in the same order with compatible arguments, and each call
// acts as a synchronization barrier across the group.
//
// Implementations:
//   - comm.Single: degenerate single-process group (built-in)
//   - comm.NATS: fixed-size group coordinating through a JetStream bucket
//   - Custom: any transport that can implement the two collectives
type Communicator interface {
	// Rank returns this worker's 0-based position in the group.
	Rank() int

	// Size returns the total number of workers in the group.
	Size() int

	// AllReduceMax combines integer vectors across the group, returning the
	// elementwise maximum to every member.
	//
	// All members must supply vectors of the same length; a length
	// disagreement is a dimension error.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - values: This worker's contribution
	//
	// Returns:
	//   - []int64: Elementwise maximum over all contributions
	//   - error: Transport or context error; ErrGroupIncomplete when the
	//     group could not be observed in full
	AllReduceMax(ctx context.Context, values []int64) ([]int64, error)

	// AllGather collects every member's vector, indexed by rank.
	//
	// Contributions may have different lengths (including empty).
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - values: This worker's contribution
	//
	// Returns:
	//   - [][]int64: Contribution of each rank r at index r
	//   - error: Transport or context error; ErrGroupIncomplete when the
	//     group could not be observed in full
	AllGather(ctx context.Context, values []int64) ([][]int64, error)
}
