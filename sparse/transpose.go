package sparse

// ToRowMajor converts a column-major matrix into the equivalent row-major
// form.
//
// The conversion is a counting sort over rows and runs in
// O(nnz + rows + cols). Entries within a row come out ordered by ascending
// column because columns are scanned in order.
//
// Parameters:
//   - m: Column-major matrix; validated before conversion
//
// Returns:
//   - RowMatrix: Row-major form with freshly allocated arrays
//   - error: ErrInvalid if m violates the compressed-form invariants
func ToRowMajor(m ColMatrix) (RowMatrix, error) {
	if err := m.Validate(); err != nil {
		return RowMatrix{}, err
	}
	start, index, value := flip(m.Start, m.Index, m.Value, m.Cols, m.Rows)

	return RowMatrix{Rows: m.Rows, Cols: m.Cols, Start: start, Index: index, Value: value}, nil
}

// ToColMajor converts a row-major matrix into the equivalent column-major
// form. It is the inverse of ToRowMajor up to entry order within a column.
//
// Parameters:
//   - m: Row-major matrix; validated before conversion
//
// Returns:
//   - ColMatrix: Column-major form with freshly allocated arrays
//   - error: ErrInvalid if m violates the compressed-form invariants
func ToColMajor(m RowMatrix) (ColMatrix, error) {
	if err := m.Validate(); err != nil {
		return ColMatrix{}, err
	}
	start, index, value := flip(m.Start, m.Index, m.Value, m.Rows, m.Cols)

	return ColMatrix{Rows: m.Rows, Cols: m.Cols, Start: start, Index: index, Value: value}, nil
}

// flip transposes one compressed axis into the other: entries stored along
// `outer` slots keyed by inner id come back stored along `inner` slots keyed
// by outer id.
func flip(start, index []int32, value []float64, outer, inner int) ([]int32, []int32, []float64) {
	outStart := make([]int32, inner+1)
	outIndex := make([]int32, len(index))
	outValue := make([]float64, len(value))

	// Count entries per inner slot, then prefix-sum into offsets.
	for _, id := range index {
		outStart[id+1]++
	}
	for i := 0; i < inner; i++ {
		outStart[i+1] += outStart[i]
	}

	// Fill pass: next[i] tracks the write cursor for inner slot i.
	next := make([]int32, inner)
	copy(next, outStart[:inner])
	for o := 0; o < outer; o++ {
		for k := start[o]; k < start[o+1]; k++ {
			id := index[k]
			p := next[id]
			outIndex[p] = int32(o)
			outValue[p] = value[k]
			next[id] = p + 1
		}
	}

	return outStart, outIndex, outValue
}
