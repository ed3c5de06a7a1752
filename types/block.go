package types

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/stochkit/blockpart/sparse"
)

// VarType represents the category of a decision variable.
type VarType int

const (
	// Continuous variables take any value within their bounds.
	Continuous VarType = iota

	// Integer variables take integral values within their bounds.
	Integer

	// Binary variables take the values 0 or 1.
	Binary
)

// Code returns the one-character wire code for the variable type:
// 'C' for continuous, 'I' for integer, 'B' for binary.
func (v VarType) Code() byte {
	switch v {
	case Integer:
		return 'I'
	case Binary:
		return 'B'
	default:
		return 'C'
	}
}

// String returns the string representation of the variable type.
func (v VarType) String() string {
	switch v {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// ObjSense represents the optimization direction of a model.
type ObjSense int

const (
	// Minimize is the canonical direction. Engine data is always expressed
	// as minimization.
	Minimize ObjSense = iota

	// Maximize models are converted to minimization by negating objective
	// coefficients during formatting.
	Maximize
)

// String returns the string representation of the objective sense.
func (s ObjSense) String() string {
	if s == Maximize {
		return "Maximize"
	}

	return "Minimize"
}

// BlockData is the wire-format representation of one block, ready for
// transmission to the engine.
//
// The column arrays (ColLower, ColUpper, ColType, Obj) cover the block's OWN
// columns only. The constraint matrix is row-major; for a coupled sub-block
// its column space spans the parent's columns followed by the block's own
// columns, so Matrix.Cols may exceed NumCols().
type BlockData struct {
	// Matrix is the row-major constraint matrix of the block.
	Matrix sparse.RowMatrix

	// ColLower and ColUpper are the bounds of the block's own columns.
	ColLower []float64
	ColUpper []float64

	// ColType holds one type code per own column ('C', 'I', or 'B').
	ColType string

	// Obj holds the objective coefficients of the block's own columns,
	// expressed in minimization form.
	Obj []float64

	// RowLower and RowUpper are the bounds of the block's rows.
	RowLower []float64
	RowUpper []float64
}

// NumCols returns the number of columns the block owns.
func (d *BlockData) NumCols() int {
	return len(d.Obj)
}

// NumRows returns the number of rows in the block.
func (d *BlockData) NumRows() int {
	return d.Matrix.Rows
}

// ParentCols returns the number of leading matrix columns that belong to the
// parent block (0 for an uncoupled block).
func (d *BlockData) ParentCols() int {
	return d.Matrix.Cols - len(d.Obj)
}

// Validate checks the structural consistency of the block data.
//
// Rules:
//  1. The matrix must itself be well formed.
//  2. ColLower, ColUpper, and ColType must match the Obj length.
//  3. RowLower and RowUpper must match the matrix row count.
//  4. The matrix column space must cover at least the own columns.
//  5. Every column type code must be one of 'C', 'I', 'B'.
//
// Returns:
//   - error: nil when consistent; an error wrapping sparse.ErrInvalid for
//     matrix malformation, ErrDimensionMismatch for array shape
//     disagreements, or ErrInvalidBlockData for unknown type codes
func (d *BlockData) Validate() error {
	if err := d.Matrix.Validate(); err != nil {
		return fmt.Errorf("block matrix: %w", err)
	}

	n := len(d.Obj)
	if len(d.ColLower) != n || len(d.ColUpper) != n {
		return fmt.Errorf("%w: column bounds cover %d/%d columns, want %d",
			ErrDimensionMismatch, len(d.ColLower), len(d.ColUpper), n)
	}
	if len(d.ColType) != n {
		return fmt.Errorf("%w: column types cover %d columns, want %d",
			ErrDimensionMismatch, len(d.ColType), n)
	}
	if len(d.RowLower) != d.Matrix.Rows || len(d.RowUpper) != d.Matrix.Rows {
		return fmt.Errorf("%w: row bounds cover %d/%d rows, want %d",
			ErrDimensionMismatch, len(d.RowLower), len(d.RowUpper), d.Matrix.Rows)
	}
	if d.Matrix.Cols < n {
		return fmt.Errorf("%w: matrix has %d columns, fewer than %d own columns",
			ErrDimensionMismatch, d.Matrix.Cols, n)
	}
	for i := 0; i < len(d.ColType); i++ {
		switch d.ColType[i] {
		case 'C', 'I', 'B':
		default:
			return fmt.Errorf("%w: column %d has type code %q",
				ErrInvalidBlockData, i, string(d.ColType[i]))
		}
	}

	return nil
}

// Fingerprint returns a canonical 64-bit digest of the block data.
//
// Two BlockData values describing the same block produce the same digest,
// so fingerprints can be exchanged across workers to verify that all group
// members hold identical master data without shipping the arrays themselves.
//
// The digest folds each field using the previous hash as the seed, so field
// boundaries contribute to the result and array reorderings change it.
func (d *BlockData) Fingerprint() uint64 {
	var buf [8]byte
	h := xxh3.Hash(nil)

	fold := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h = xxh3.HashSeed(buf[:], h)
	}

	fold(uint64(d.Matrix.Rows))
	fold(uint64(d.Matrix.Cols))
	fold(uint64(len(d.Obj)))
	for _, s := range d.Matrix.Start {
		fold(uint64(s))
	}
	for _, id := range d.Matrix.Index {
		fold(uint64(id))
	}
	for _, v := range d.Matrix.Value {
		fold(math.Float64bits(v))
	}
	for _, v := range d.ColLower {
		fold(math.Float64bits(v))
	}
	for _, v := range d.ColUpper {
		fold(math.Float64bits(v))
	}
	h = xxh3.HashStringSeed(d.ColType, h)
	for _, v := range d.Obj {
		fold(math.Float64bits(v))
	}
	for _, v := range d.RowLower {
		fold(math.Float64bits(v))
	}
	for _, v := range d.RowUpper {
		fold(math.Float64bits(v))
	}

	return h
}
