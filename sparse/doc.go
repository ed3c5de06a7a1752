// Package sparse provides the compressed sparse matrix forms exchanged with
// the solve engine.
//
// Constraint matrices arrive column-major (CSC) from the model layer and are
// shipped row-major (CSR) on the engine wire. The package includes:
//
//   - ColMatrix: column-major compressed form (build side)
//   - RowMatrix: row-major compressed form (wire side)
//   - ToRowMajor / ToColMajor: counting-sort transposition between the two
//
// Both forms share the same invariants: start[0] == 0, start is monotonically
// non-decreasing, and start[dim] == len(index) == len(value). Offsets and ids
// are int32 to match the engine's wire width.
package sparse
