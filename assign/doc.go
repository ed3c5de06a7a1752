// Package assign provides built-in block ownership strategies.
//
// An ownership strategy decides which blocks a worker is responsible for
// loading. Every worker in a process group evaluates the strategy locally
// with the same inputs (total block count, group topology, coordinator
// policy), so the group arrives at a consistent global partition without any
// communication.
//
// The package includes two built-in strategies:
//
//   - RoundRobin: deterministic cyclic distribution by modular arithmetic
//     (the default)
//   - ConsistentHash: sticky distribution via a hash ring with virtual nodes
//
// # Strategy Selection Guide
//
// RoundRobin:
//   - Use for one-shot jobs and uniform blocks
//   - Guarantees the tightest balance: share sizes differ by at most one
//   - Groups larger than the block count wrap and co-own blocks so the
//     engine can parallelize within them
//
// ConsistentHash:
//   - Use when the same job is rerun with varying worker counts and engine
//     state per worker (factorizations, cut pools) is worth preserving
//   - Resizing the group moves only the blocks whose ring neighborhood
//     changed
//   - Balance is statistical rather than exact; tune with WithVirtualNodes
//
// Custom strategies can be implemented by satisfying the types.Assigner
// interface.
package assign
