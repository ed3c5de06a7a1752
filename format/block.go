package format

import (
	"fmt"
	"slices"

	"github.com/stochkit/blockpart/model"
	"github.com/stochkit/blockpart/sparse"
	"github.com/stochkit/blockpart/types"
)

// Block serializes one model block into wire form.
//
// The column arrays of the result cover the block's own columns; the matrix
// column space additionally includes the parent's columns when the block is
// attached. Objective coefficients are normalized to minimization: a
// maximize-sense block has every coefficient negated.
//
// Parameters:
//   - b: The block to serialize (master or sub-block)
//
// Returns:
//   - *types.BlockData: Freshly allocated wire-format data
//   - error: model.ErrColumnRange or model.ErrNoParent for rows referencing
//     columns outside the block's spaces; transposition errors wrap
//     sparse.ErrInvalid
func Block(b *model.Block) (*types.BlockData, error) {
	own := b.NumCols()
	nrows := b.NumRows()
	parentCols := 0
	if b.Parent() != nil {
		parentCols = b.Parent().NumCols()
	}

	col, err := buildColMajor(b, parentCols, own, nrows)
	if err != nil {
		return nil, err
	}

	matrix, err := sparse.ToRowMajor(col)
	if err != nil {
		return nil, fmt.Errorf("failed to transpose block matrix: %w", err)
	}

	data := &types.BlockData{
		Matrix:   matrix,
		ColLower: make([]float64, own),
		ColUpper: make([]float64, own),
		Obj:      make([]float64, own),
		RowLower: make([]float64, nrows),
		RowUpper: make([]float64, nrows),
	}

	negate := b.Sense() == types.Maximize
	codes := make([]byte, own)
	for i := 0; i < own; i++ {
		data.ColLower[i] = b.ColLower(i)
		data.ColUpper[i] = b.ColUpper(i)
		codes[i] = b.ColType(i).Code()

		obj := b.ObjCoeff(i)
		if negate {
			obj = -obj
		}
		data.Obj[i] = obj
	}
	data.ColType = string(codes)

	for i := 0; i < nrows; i++ {
		data.RowLower[i] = b.RowLower(i)
		data.RowUpper[i] = b.RowUpper(i)
	}

	return data, nil
}

// buildColMajor assembles the column-oriented constraint matrix of a block
// over the parent++own column space.
//
// Terms are re-validated here so a block formatted out of band still fails
// cleanly instead of panicking on a bad index.
func buildColMajor(b *model.Block, parentCols, own, nrows int) (sparse.ColMatrix, error) {
	ncols := parentCols + own
	terms := make([][]model.Term, nrows)
	nnz := 0
	for i := 0; i < nrows; i++ {
		terms[i] = b.RowTerms(i)
		nnz += len(terms[i])
	}

	counts := make([]int32, ncols+1)
	for i, row := range terms {
		for _, t := range row {
			gcol, err := globalColumn(t, parentCols, own)
			if err != nil {
				return sparse.ColMatrix{}, fmt.Errorf("row %d: %w", i, err)
			}
			counts[gcol+1]++
		}
	}

	m := sparse.ColMatrix{
		Rows:  nrows,
		Cols:  ncols,
		Start: counts,
		Index: make([]int32, nnz),
		Value: make([]float64, nnz),
	}
	for j := 0; j < ncols; j++ {
		m.Start[j+1] += m.Start[j]
	}

	// Rows are walked in order, so entries within a column come out with
	// ascending row ids.
	next := make([]int32, ncols)
	copy(next, m.Start[:ncols])
	for i, row := range terms {
		for _, t := range row {
			gcol, _ := globalColumn(t, parentCols, own)
			pos := next[gcol]
			m.Index[pos] = int32(i)
			m.Value[pos] = t.Coef
			next[gcol] = pos + 1
		}
	}

	return m, nil
}

// globalColumn maps a term to its index in the parent++own column space.
func globalColumn(t model.Term, parentCols, own int) (int, error) {
	if t.Parent {
		if parentCols == 0 {
			return 0, fmt.Errorf("%w: column %d", model.ErrNoParent, t.Col)
		}
		if t.Col < 0 || t.Col >= parentCols {
			return 0, fmt.Errorf("%w: parent column %d of %d", model.ErrColumnRange, t.Col, parentCols)
		}

		return t.Col, nil
	}
	if t.Col < 0 || t.Col >= own {
		return 0, fmt.Errorf("%w: column %d of %d", model.ErrColumnRange, t.Col, own)
	}

	return parentCols + t.Col, nil
}

// PrefixMaster produces the structured-layout wire form of a sub-block by
// prefixing the master's column data onto the block's own column arrays.
//
// The resulting column arrays cover the master columns followed by the
// block's own columns, matching the block matrix column space. Row bounds
// stay local to the block. Column arrays are freshly allocated; the matrix is
// shared with the input since it is unchanged.
//
// Parameters:
//   - master: Formatted master block
//   - block: Formatted sub-block whose matrix spans master++own columns
//
// Returns:
//   - *types.BlockData: Block data covering the combined column space
//   - error: types.ErrDimensionMismatch when the block matrix does not
//     reserve exactly the master's column count
func PrefixMaster(master, block *types.BlockData) (*types.BlockData, error) {
	if block.ParentCols() != master.NumCols() {
		return nil, fmt.Errorf("%w: block matrix reserves %d parent columns, master has %d",
			types.ErrDimensionMismatch, block.ParentCols(), master.NumCols())
	}

	return &types.BlockData{
		Matrix:   block.Matrix,
		ColLower: slices.Concat(master.ColLower, block.ColLower),
		ColUpper: slices.Concat(master.ColUpper, block.ColUpper),
		ColType:  master.ColType + block.ColType,
		Obj:      slices.Concat(master.Obj, block.Obj),
		RowLower: slices.Clone(block.RowLower),
		RowUpper: slices.Clone(block.RowUpper),
	}, nil
}
