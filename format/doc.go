// Package format serializes model blocks into the wire form the engine
// consumes.
//
// Block extracts bounds, objective, variable types, and the row-major sparse
// constraint matrix from one model block. For a coupled sub-block the matrix
// column space spans the parent's columns followed by the block's own
// columns: parent terms keep their index, own terms are offset by the
// parent's column count.
//
// PrefixMaster stitches the master's column data onto a formatted sub-block
// for the general structured layout, where each transmitted block carries the
// master columns alongside its own.
//
// All functions are pure reads: the source model is never mutated and output
// arrays are freshly allocated.
package format
