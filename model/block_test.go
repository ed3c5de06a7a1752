package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stochkit/blockpart/types"
)

func TestBlockColumns(t *testing.T) {
	b := NewBlock()

	x := b.AddColumn(0, 10, 1.5, types.Continuous)
	y := b.AddColumn(-math.Inf(1), math.Inf(1), -2, types.Integer)
	z := b.AddColumn(0, 1, 0, types.Binary)

	require.Equal(t, []int{0, 1, 2}, []int{x, y, z})
	require.Equal(t, 3, b.NumCols())

	require.Equal(t, float64(0), b.ColLower(x))
	require.Equal(t, float64(10), b.ColUpper(x))
	require.Equal(t, 1.5, b.ObjCoeff(x))
	require.Equal(t, types.Continuous, b.ColType(x))

	require.True(t, math.IsInf(b.ColLower(y), -1))
	require.True(t, math.IsInf(b.ColUpper(y), 1))
	require.Equal(t, types.Integer, b.ColType(y))
	require.Equal(t, types.Binary, b.ColType(z))
}

func TestBlockRows(t *testing.T) {
	t.Run("accepts rows over own columns", func(t *testing.T) {
		b := NewBlock()
		x := b.AddColumn(0, 1, 1, types.Continuous)
		y := b.AddColumn(0, 1, 1, types.Continuous)

		i, err := b.AddRow(0, 5, Term{Col: x, Coef: 2}, Term{Col: y, Coef: -1})

		require.NoError(t, err)
		require.Equal(t, 0, i)
		require.Equal(t, 1, b.NumRows())
		require.Equal(t, float64(0), b.RowLower(i))
		require.Equal(t, float64(5), b.RowUpper(i))
		require.Equal(t, []Term{{Col: 0, Coef: 2}, {Col: 1, Coef: -1}}, b.RowTerms(i))
	})

	t.Run("rejects out-of-range own columns", func(t *testing.T) {
		b := NewBlock()
		b.AddColumn(0, 1, 1, types.Continuous)

		_, err := b.AddRow(0, 1, Term{Col: 1, Coef: 1})
		require.ErrorIs(t, err, ErrColumnRange)

		_, err = b.AddRow(0, 1, Term{Col: -1, Coef: 1})
		require.ErrorIs(t, err, ErrColumnRange)
	})

	t.Run("rejects parent terms before attachment", func(t *testing.T) {
		b := NewBlock()
		b.AddColumn(0, 1, 1, types.Continuous)

		_, err := b.AddRow(0, 1, Term{Col: 0, Coef: 1, Parent: true})

		require.ErrorIs(t, err, ErrNoParent)
		require.Equal(t, 0, b.NumRows())
	})

	t.Run("validates parent terms against the parent", func(t *testing.T) {
		master := NewBlock()
		master.AddColumn(0, 1, 1, types.Continuous)
		sub := NewBlock()
		sub.AddColumn(0, 1, 1, types.Continuous)
		require.NoError(t, master.AttachChild(1, 1, sub))

		_, err := sub.AddRow(0, 1, Term{Col: 0, Coef: 1, Parent: true}, Term{Col: 0, Coef: 1})
		require.NoError(t, err)

		_, err = sub.AddRow(0, 1, Term{Col: 1, Coef: 1, Parent: true})
		require.ErrorIs(t, err, ErrColumnRange)
	})

	t.Run("row terms are copied", func(t *testing.T) {
		b := NewBlock()
		b.AddColumn(0, 1, 1, types.Continuous)
		terms := []Term{{Col: 0, Coef: 1}}

		i, err := b.AddRow(0, 1, terms...)
		require.NoError(t, err)

		terms[0].Coef = 99
		require.Equal(t, float64(1), b.RowTerms(i)[0].Coef)

		got := b.RowTerms(i)
		got[0].Coef = 42
		require.Equal(t, float64(1), b.RowTerms(i)[0].Coef)
	})
}

func TestAttachChild(t *testing.T) {
	t.Run("attaches and indexes children", func(t *testing.T) {
		master := NewBlock()
		a, b, c := NewBlock(), NewBlock(), NewBlock()

		require.NoError(t, master.AttachChild(3, 0.25, a))
		require.NoError(t, master.AttachChild(1, 0.5, b))
		require.NoError(t, master.AttachChild(7, 0.25, c))

		require.Equal(t, 3, master.NumBlocks())
		require.Equal(t, []int{1, 3, 7}, master.ChildIDs())
		require.Same(t, a, master.Child(3))
		require.Same(t, b, master.Child(1))
		require.Same(t, master, a.Parent())
		require.Equal(t, 0.5, master.Weight(1))
		require.Equal(t, float64(0), master.Weight(2))
		require.Nil(t, master.Child(2))
	})

	t.Run("rejects invalid attachments", func(t *testing.T) {
		master := NewBlock()
		sub := NewBlock()

		require.ErrorIs(t, master.AttachChild(1, 1, nil), ErrNilChild)
		require.ErrorIs(t, master.AttachChild(0, 1, sub), ErrInvalidBlockID)
		require.ErrorIs(t, master.AttachChild(-2, 1, sub), ErrInvalidBlockID)
		require.ErrorIs(t, master.AttachChild(1, 0, sub), ErrInvalidWeight)
		require.ErrorIs(t, master.AttachChild(1, -0.5, sub), ErrInvalidWeight)

		require.NoError(t, master.AttachChild(1, 1, sub))
		require.ErrorIs(t, master.AttachChild(1, 1, NewBlock()), ErrDuplicateBlockID)
		require.ErrorIs(t, master.AttachChild(2, 1, sub), ErrAlreadyAttached)
	})

	t.Run("child id list is a copy", func(t *testing.T) {
		master := NewBlock()
		require.NoError(t, master.AttachChild(2, 1, NewBlock()))
		require.NoError(t, master.AttachChild(5, 1, NewBlock()))

		ids := master.ChildIDs()
		ids[0] = 99
		require.Equal(t, []int{2, 5}, master.ChildIDs())
	})
}

func TestBlockSense(t *testing.T) {
	b := NewBlock()
	require.Equal(t, types.Minimize, b.Sense())

	b.SetSense(types.Maximize)
	require.Equal(t, types.Maximize, b.Sense())
}
