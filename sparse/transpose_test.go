package sparse

import (
	"math/rand"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// denseFromCol expands a column-major matrix into a gonum dense matrix.
func denseFromCol(m ColMatrix) *mat.Dense {
	d := mat.NewDense(max(m.Rows, 1), max(m.Cols, 1), nil)
	for j := 0; j < m.Cols; j++ {
		for k := m.Start[j]; k < m.Start[j+1]; k++ {
			d.Set(int(m.Index[k]), j, d.At(int(m.Index[k]), j)+m.Value[k])
		}
	}

	return d
}

// denseFromRow expands a row-major matrix into a gonum dense matrix.
func denseFromRow(m RowMatrix) *mat.Dense {
	d := mat.NewDense(max(m.Rows, 1), max(m.Cols, 1), nil)
	for i := 0; i < m.Rows; i++ {
		for k := m.Start[i]; k < m.Start[i+1]; k++ {
			d.Set(i, int(m.Index[k]), d.At(i, int(m.Index[k]))+m.Value[k])
		}
	}

	return d
}

// randomCol builds a valid random column-major matrix. Row ids within each
// column are strictly increasing, so a double transposition reproduces the
// input exactly.
func randomCol(rng *rand.Rand, fz *fuzz.Fuzzer) ColMatrix {
	rows := 1 + rng.Intn(12)
	cols := 1 + rng.Intn(12)
	m := ColMatrix{Rows: rows, Cols: cols, Start: make([]int32, 1, cols+1)}
	for j := 0; j < cols; j++ {
		for r := 0; r < rows; r++ {
			if rng.Intn(3) == 0 {
				m.Index = append(m.Index, int32(r))
			}
		}
		m.Start = append(m.Start, int32(len(m.Index)))
	}
	m.Value = make([]float64, len(m.Index))
	fz.NilChance(0).NumElements(len(m.Index), len(m.Index))
	fz.Fuzz(&m.Value)
	// Fuzz may hand back a reallocated slice of the requested length.
	if len(m.Value) != len(m.Index) {
		m.Value = make([]float64, len(m.Index))
		for k := range m.Value {
			m.Value[k] = rng.NormFloat64()
		}
	}

	return m
}

func TestToRowMajor(t *testing.T) {
	t.Run("converts a known matrix", func(t *testing.T) {
		// | 1 0 2 |
		// | 0 3 4 |
		m := ColMatrix{
			Rows:  2,
			Cols:  3,
			Start: []int32{0, 1, 2, 4},
			Index: []int32{0, 1, 0, 1},
			Value: []float64{1, 3, 2, 4},
		}

		r, err := ToRowMajor(m)

		require.NoError(t, err)
		require.Equal(t, []int32{0, 2, 4}, r.Start)
		require.Equal(t, []int32{0, 2, 1, 2}, r.Index)
		require.Equal(t, []float64{1, 2, 3, 4}, r.Value)
		require.NoError(t, r.Validate())
	})

	t.Run("handles empty rows and columns", func(t *testing.T) {
		m := ColMatrix{
			Rows:  3,
			Cols:  3,
			Start: []int32{0, 0, 2, 2},
			Index: []int32{0, 2},
			Value: []float64{5, 6},
		}

		r, err := ToRowMajor(m)

		require.NoError(t, err)
		require.Equal(t, []int32{0, 1, 1, 2}, r.Start)
		require.Equal(t, []int32{1, 1}, r.Index)
		require.Equal(t, []float64{5, 6}, r.Value)
	})

	t.Run("handles an empty matrix", func(t *testing.T) {
		m := ColMatrix{Rows: 0, Cols: 0, Start: []int32{0}}

		r, err := ToRowMajor(m)

		require.NoError(t, err)
		require.Equal(t, []int32{0}, r.Start)
		require.Empty(t, r.Index)
		require.Empty(t, r.Value)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		m := ColMatrix{Rows: 1, Cols: 1, Start: []int32{0, 2}, Index: []int32{0}, Value: []float64{1}}

		_, err := ToRowMajor(m)

		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("does not alias the input arrays", func(t *testing.T) {
		m := ColMatrix{
			Rows:  1,
			Cols:  1,
			Start: []int32{0, 1},
			Index: []int32{0},
			Value: []float64{9},
		}

		r, err := ToRowMajor(m)
		require.NoError(t, err)

		m.Value[0] = -1
		require.Equal(t, float64(9), r.Value[0])
	})
}

func TestTranspose_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fz := fuzz.New().RandSource(rand.NewSource(43))

	for i := 0; i < 50; i++ {
		m := randomCol(rng, fz)
		require.NoError(t, m.Validate())

		r, err := ToRowMajor(m)
		require.NoError(t, err)
		require.NoError(t, r.Validate())

		back, err := ToColMajor(r)
		require.NoError(t, err)

		// Row ids within each column were generated in ascending order, so
		// the double transposition reproduces the exact arrays.
		require.Equal(t, m, back)
	}
}

func TestTranspose_AgainstDense(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fz := fuzz.New().RandSource(rand.NewSource(8))

	for i := 0; i < 50; i++ {
		m := randomCol(rng, fz)

		r, err := ToRowMajor(m)
		require.NoError(t, err)

		want := denseFromCol(m)
		got := denseFromRow(r)
		require.True(t, mat.Equal(want, got), "dense reconstruction differs")
	}
}

func TestTranspose_UnsortedColumnOrder(t *testing.T) {
	// Row ids deliberately out of order within the column; a round trip must
	// preserve the entry set per column even though the order is canonicalized.
	m := ColMatrix{
		Rows:  3,
		Cols:  2,
		Start: []int32{0, 3, 4},
		Index: []int32{2, 0, 1, 1},
		Value: []float64{30, 10, 20, 40},
	}
	require.NoError(t, m.Validate())

	r, err := ToRowMajor(m)
	require.NoError(t, err)

	back, err := ToColMajor(r)
	require.NoError(t, err)

	require.Equal(t, m.Start, back.Start)
	require.Equal(t, []int32{0, 1, 2, 1}, back.Index)
	require.Equal(t, []float64{10, 20, 30, 40}, back.Value)
	require.True(t, mat.Equal(denseFromCol(m), denseFromCol(back)))
}
