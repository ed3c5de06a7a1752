// Package comm provides built-in communicator implementations.
//
// Communicators carry the collective operations the loader and the group
// solve methods rely on. The package includes:
//
//   - Single: Degenerate single-process group (rank 0, size 1)
//   - NATS: Fixed-size group coordinating through a NATS JetStream KV bucket
//
// Custom communicators can be implemented by satisfying the
// types.Communicator interface.
//
// All collectives are SPMD operations: every member of the group must issue
// the same sequence of collective calls in the same order. Interleaving
// different operations across members deadlocks or mixes contributions.
package comm
