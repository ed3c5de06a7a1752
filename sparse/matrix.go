package sparse

import (
	"errors"
	"fmt"
)

// ErrInvalid indicates a malformed compressed sparse matrix.
var ErrInvalid = errors.New("invalid sparse matrix")

// ColMatrix is a column-major (CSC) compressed sparse matrix.
//
// Start holds 0-based offsets into Index/Value, one entry per column plus a
// trailing sentinel. Index holds 0-based row ids.
type ColMatrix struct {
	Rows  int
	Cols  int
	Start []int32
	Index []int32
	Value []float64
}

// Nonzeros returns the number of stored entries.
func (m ColMatrix) Nonzeros() int { return len(m.Value) }

// Validate checks the compressed-form invariants.
//
// Returns:
//   - error: ErrInvalid-wrapped description of the first violation, nil if valid
func (m ColMatrix) Validate() error {
	return validate(m.Start, m.Index, len(m.Value), m.Cols, m.Rows, "column")
}

// RowMatrix is a row-major (CSR) compressed sparse matrix — the form the
// engine consumes.
//
// Start holds 0-based offsets into Index/Value, one entry per row plus a
// trailing sentinel. Index holds 0-based column ids.
type RowMatrix struct {
	Rows  int
	Cols  int
	Start []int32
	Index []int32
	Value []float64
}

// Nonzeros returns the number of stored entries.
func (m RowMatrix) Nonzeros() int { return len(m.Value) }

// Validate checks the compressed-form invariants.
//
// Returns:
//   - error: ErrInvalid-wrapped description of the first violation, nil if valid
func (m RowMatrix) Validate() error {
	return validate(m.Start, m.Index, len(m.Value), m.Rows, m.Cols, "row")
}

// validate checks a compressed axis: start spans outer+1 offsets, offsets are
// monotone from 0 to nnz, and every index addresses the inner dimension.
func validate(start, index []int32, nvalues, outer, inner int, axis string) error {
	if outer < 0 || inner < 0 {
		return fmt.Errorf("%w: negative dimension %dx%d", ErrInvalid, outer, inner)
	}
	if len(start) != outer+1 {
		return fmt.Errorf("%w: %s start length %d, want %d", ErrInvalid, axis, len(start), outer+1)
	}
	if len(index) != nvalues {
		return fmt.Errorf("%w: index length %d, value length %d", ErrInvalid, len(index), nvalues)
	}
	if start[0] != 0 {
		return fmt.Errorf("%w: %s start[0] = %d, want 0", ErrInvalid, axis, start[0])
	}
	for i := 1; i < len(start); i++ {
		if start[i] < start[i-1] {
			return fmt.Errorf("%w: %s start decreases at %d (%d < %d)", ErrInvalid, axis, i, start[i], start[i-1])
		}
	}
	if int(start[outer]) != nvalues {
		return fmt.Errorf("%w: %s start[%d] = %d, want %d", ErrInvalid, axis, outer, start[outer], nvalues)
	}
	for k, id := range index {
		if id < 0 || int(id) >= inner {
			return fmt.Errorf("%w: index[%d] = %d out of range [0,%d)", ErrInvalid, k, id, inner)
		}
	}

	return nil
}
