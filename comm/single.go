package comm

import (
	"context"
	"slices"

	"github.com/stochkit/blockpart/types"
)

// Single is the degenerate communicator for a single-process session.
//
// It reports rank 0 in a group of size 1, and every collective reduces to a
// local copy of the caller's own contribution. It is the default communicator
// when none is injected.
type Single struct{}

// Compile-time assertion that Single implements Communicator.
var _ types.Communicator = (*Single)(nil)

// NewSingle creates a single-process communicator.
//
// Returns:
//   - *Single: A communicator for a group of exactly one worker
func NewSingle() *Single {
	return &Single{}
}

// Rank returns 0, the only rank in a single-process group.
func (s *Single) Rank() int { return 0 }

// Size returns 1.
func (s *Single) Size() int { return 1 }

// AllReduceMax returns a copy of the caller's own contribution.
//
// With a single member the elementwise maximum is the input itself. The
// result never aliases the input slice.
func (s *Single) AllReduceMax(ctx context.Context, values []int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return slices.Clone(values), nil
}

// AllGather returns the caller's own contribution as the sole group entry.
func (s *Single) AllGather(ctx context.Context, values []int64) ([][]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return [][]int64{slices.Clone(values)}, nil
}
