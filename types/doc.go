// Package types provides core type definitions and interfaces for the
// blockpart library.
//
// This package contains shared types that are used across multiple packages in
// the blockpart library. By keeping these types in a separate package, we avoid
// import cycles between the main blockpart package and its internal
// implementations.
//
// Key types:
//   - LoadState: Problem loading lifecycle state
//   - BlockData: Wire-format representation of one block
//   - Topology: Rank/size position of a worker inside its process group
//   - Assigner: Block ownership strategy interface
//   - Communicator: Process-group collective operations interface
//   - Engine: Opaque solver engine boundary
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
