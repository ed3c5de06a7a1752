package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stochkit/blockpart/model"
	"github.com/stochkit/blockpart/types"
)

// coupledModel builds a master with two columns and one sub-block with two
// own columns and rows referencing both column spaces.
func coupledModel(t *testing.T) (*model.Block, *model.Block) {
	t.Helper()

	master := model.NewBlock()
	master.AddColumn(0, 10, 1, types.Continuous)
	master.AddColumn(0, 10, 2, types.Continuous)
	_, err := master.AddRow(1, 5, model.Term{Col: 0, Coef: 1}, model.Term{Col: 1, Coef: 1})
	require.NoError(t, err)

	sub := model.NewBlock()
	sub.AddColumn(0, 1, 3, types.Continuous)
	sub.AddColumn(0, 2, 4, types.Continuous)
	require.NoError(t, master.AttachChild(1, 1, sub))

	_, err = sub.AddRow(0, 8,
		model.Term{Col: 0, Coef: 5, Parent: true},
		model.Term{Col: 0, Coef: 6},
	)
	require.NoError(t, err)
	_, err = sub.AddRow(2, 2,
		model.Term{Col: 1, Coef: 7, Parent: true},
		model.Term{Col: 0, Coef: 8},
		model.Term{Col: 1, Coef: 9},
	)
	require.NoError(t, err)

	return master, sub
}

func TestBlock(t *testing.T) {
	t.Run("uncoupled minimize model keeps objective signs", func(t *testing.T) {
		b := model.NewBlock()
		b.AddColumn(0, 4, 1.5, types.Continuous)
		b.AddColumn(-1, 1, -2.5, types.Continuous)
		_, err := b.AddRow(0, 3, model.Term{Col: 0, Coef: 1}, model.Term{Col: 1, Coef: 2})
		require.NoError(t, err)

		data, err := Block(b)

		require.NoError(t, err)
		require.NoError(t, data.Validate())
		require.Equal(t, "CC", data.ColType)
		require.Equal(t, []float64{1.5, -2.5}, data.Obj)
		require.Equal(t, 2, data.Matrix.Cols)
		require.Equal(t, 0, data.ParentCols())
	})

	t.Run("maximize model negates objective coefficients", func(t *testing.T) {
		b := model.NewBlock()
		b.SetSense(types.Maximize)
		b.AddColumn(0, 1, 1.5, types.Continuous)
		b.AddColumn(0, 1, -2, types.Continuous)
		b.AddColumn(0, 1, 0, types.Continuous)

		data, err := Block(b)

		require.NoError(t, err)
		require.Equal(t, []float64{-1.5, 2, 0}, data.Obj)
	})

	t.Run("maps variable categories to type codes", func(t *testing.T) {
		b := model.NewBlock()
		b.AddColumn(0, 1, 0, types.Continuous)
		b.AddColumn(0, 5, 0, types.Integer)
		b.AddColumn(0, 1, 0, types.Binary)

		data, err := Block(b)

		require.NoError(t, err)
		require.Equal(t, "CIB", data.ColType)
	})

	t.Run("copies bounds verbatim", func(t *testing.T) {
		b := model.NewBlock()
		b.AddColumn(-math.Inf(1), 7, 1, types.Continuous)
		_, err := b.AddRow(2, math.Inf(1), model.Term{Col: 0, Coef: 1})
		require.NoError(t, err)

		data, err := Block(b)

		require.NoError(t, err)
		require.True(t, math.IsInf(data.ColLower[0], -1))
		require.Equal(t, []float64{7}, data.ColUpper)
		require.Equal(t, []float64{2}, data.RowLower)
		require.True(t, math.IsInf(data.RowUpper[0], 1))
	})

	t.Run("coupled block spans parent and own columns", func(t *testing.T) {
		_, sub := coupledModel(t)

		data, err := Block(sub)

		require.NoError(t, err)
		require.NoError(t, data.Validate())
		require.Equal(t, 2, data.NumCols())
		require.Equal(t, 2, data.ParentCols())
		require.Equal(t, 4, data.Matrix.Cols)
		require.Equal(t, []int32{0, 2, 5}, data.Matrix.Start)
		require.Equal(t, []int32{0, 2, 1, 2, 3}, data.Matrix.Index)
		require.Equal(t, []float64{5, 6, 7, 8, 9}, data.Matrix.Value)
		require.Equal(t, []float64{3, 4}, data.Obj)
		require.Equal(t, []float64{0, 2}, data.RowLower)
		require.Equal(t, []float64{8, 2}, data.RowUpper)
	})

	t.Run("handles a block with no rows", func(t *testing.T) {
		b := model.NewBlock()
		b.AddColumn(0, 1, 1, types.Continuous)

		data, err := Block(b)

		require.NoError(t, err)
		require.NoError(t, data.Validate())
		require.Equal(t, 0, data.NumRows())
		require.Equal(t, []int32{0}, data.Matrix.Start)
	})

	t.Run("is a pure read of the model", func(t *testing.T) {
		_, sub := coupledModel(t)

		first, err := Block(sub)
		require.NoError(t, err)

		// Scribbling on the first result must not leak into a second pass.
		first.Obj[0] = 999
		first.Matrix.Value[0] = 999
		first.RowLower[0] = 999

		second, err := Block(sub)
		require.NoError(t, err)
		require.Equal(t, []float64{3, 4}, second.Obj)
		require.Equal(t, []float64{5, 6, 7, 8, 9}, second.Matrix.Value)
		require.Equal(t, []float64{0, 2}, second.RowLower)
	})
}

func TestPrefixMaster(t *testing.T) {
	t.Run("prefixes master column data", func(t *testing.T) {
		master, sub := coupledModel(t)

		masterData, err := Block(master)
		require.NoError(t, err)
		subData, err := Block(sub)
		require.NoError(t, err)

		combined, err := PrefixMaster(masterData, subData)

		require.NoError(t, err)
		require.NoError(t, combined.Validate())
		require.Equal(t, 4, combined.NumCols())
		require.Equal(t, 0, combined.ParentCols())
		require.Equal(t, []float64{0, 0, 0, 0}, combined.ColLower)
		require.Equal(t, []float64{10, 10, 1, 2}, combined.ColUpper)
		require.Equal(t, "CCCC", combined.ColType)
		require.Equal(t, []float64{1, 2, 3, 4}, combined.Obj)

		// Row bounds stay local to the block.
		require.Equal(t, []float64{0, 2}, combined.RowLower)
		require.Equal(t, []float64{8, 2}, combined.RowUpper)
	})

	t.Run("rejects a master of the wrong width", func(t *testing.T) {
		master, sub := coupledModel(t)

		masterData, err := Block(master)
		require.NoError(t, err)
		subData, err := Block(sub)
		require.NoError(t, err)

		masterData.ColLower = append(masterData.ColLower, 0)
		masterData.ColUpper = append(masterData.ColUpper, 1)
		masterData.Obj = append(masterData.Obj, 0)
		masterData.ColType += "C"

		_, err = PrefixMaster(masterData, subData)
		require.ErrorIs(t, err, types.ErrDimensionMismatch)
	})

	t.Run("does not mutate its inputs", func(t *testing.T) {
		master, sub := coupledModel(t)

		masterData, err := Block(master)
		require.NoError(t, err)
		subData, err := Block(sub)
		require.NoError(t, err)

		combined, err := PrefixMaster(masterData, subData)
		require.NoError(t, err)

		combined.ColLower[0] = -5
		combined.RowLower[0] = -5
		require.Equal(t, []float64{0, 0}, masterData.ColLower)
		require.Equal(t, []float64{0, 2}, subData.RowLower)
	})
}
