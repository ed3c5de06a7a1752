package model

import (
	"fmt"
	"slices"

	"github.com/stochkit/blockpart/types"
)

// Term is one coefficient of a constraint row.
//
// Parent selects the column space the index refers to: false targets the
// block's own columns, true targets the parent block's columns. Parent terms
// are how sub-block rows couple to master variables.
type Term struct {
	// Col is the 0-based column index within the targeted block.
	Col int

	// Coef is the coefficient value.
	Coef float64

	// Parent marks the term as referencing a parent column.
	Parent bool
}

type column struct {
	lower float64
	upper float64
	obj   float64
	vtype types.VarType
}

type row struct {
	lower float64
	upper float64
	terms []Term
}

// Block is one node of a block-structured problem.
//
// The zero value is not usable; create blocks with NewBlock. Column and row
// indices are assigned in insertion order and never change.
type Block struct {
	sense    types.ObjSense
	cols     []column
	rows     []row
	parent   *Block
	children map[int]*Block
	weights  map[int]float64

	// childIDs caches the sorted id list; nil means stale.
	childIDs []int
}

// NewBlock creates an empty minimization block.
func NewBlock() *Block {
	return &Block{
		children: make(map[int]*Block),
		weights:  make(map[int]float64),
	}
}

// SetSense sets the optimization direction of the block.
//
// The sense matters on the block whose objective is being interpreted;
// formatting converts maximization to minimization by negating coefficients.
func (b *Block) SetSense(sense types.ObjSense) {
	b.sense = sense
}

// Sense returns the optimization direction of the block.
func (b *Block) Sense() types.ObjSense {
	return b.sense
}

// AddColumn appends a decision variable and returns its 0-based index.
//
// Parameters:
//   - lower, upper: Variable bounds (use ±math.Inf for free directions)
//   - obj: Objective coefficient in the block's sense
//   - vtype: Variable category
func (b *Block) AddColumn(lower, upper, obj float64, vtype types.VarType) int {
	b.cols = append(b.cols, column{lower: lower, upper: upper, obj: obj, vtype: vtype})

	return len(b.cols) - 1
}

// AddRow appends a constraint row and returns its 0-based index.
//
// Every term is validated against the column space it targets: own terms
// against this block's current column count, parent terms against the
// parent's. Parent terms require the block to be attached first.
//
// Returns:
//   - int: The new row index (-1 on error)
//   - error: ErrColumnRange, ErrNoParent, or nil
func (b *Block) AddRow(lower, upper float64, terms ...Term) (int, error) {
	for _, t := range terms {
		if err := b.checkTerm(t); err != nil {
			return -1, err
		}
	}

	b.rows = append(b.rows, row{lower: lower, upper: upper, terms: slices.Clone(terms)})

	return len(b.rows) - 1, nil
}

func (b *Block) checkTerm(t Term) error {
	if t.Parent {
		if b.parent == nil {
			return fmt.Errorf("%w: column %d", ErrNoParent, t.Col)
		}
		if t.Col < 0 || t.Col >= b.parent.NumCols() {
			return fmt.Errorf("%w: parent column %d of %d", ErrColumnRange, t.Col, b.parent.NumCols())
		}

		return nil
	}
	if t.Col < 0 || t.Col >= len(b.cols) {
		return fmt.Errorf("%w: column %d of %d", ErrColumnRange, t.Col, len(b.cols))
	}

	return nil
}

// AttachChild attaches a sub-block under the given positive id.
//
// The id identifies the block across all workers, so it must be unique within
// the parent. The weight scales the block's objective contribution (the
// scenario probability for two-stage problems) and must be positive. A block
// can be attached at most once.
//
// Returns:
//   - error: ErrNilChild, ErrInvalidBlockID, ErrInvalidWeight,
//     ErrDuplicateBlockID, ErrAlreadyAttached, or nil
func (b *Block) AttachChild(id int, weight float64, child *Block) error {
	if child == nil {
		return ErrNilChild
	}
	if id < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBlockID, id)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: got %g for block %d", ErrInvalidWeight, weight, id)
	}
	if _, exists := b.children[id]; exists {
		return fmt.Errorf("%w: id %d", ErrDuplicateBlockID, id)
	}
	if child.parent != nil {
		return fmt.Errorf("%w: id %d", ErrAlreadyAttached, id)
	}

	child.parent = b
	b.children[id] = child
	b.weights[id] = weight
	b.childIDs = nil

	return nil
}

// NumCols returns the number of columns in the block.
func (b *Block) NumCols() int {
	return len(b.cols)
}

// NumRows returns the number of rows in the block.
func (b *Block) NumRows() int {
	return len(b.rows)
}

// NumBlocks returns the number of attached sub-blocks.
func (b *Block) NumBlocks() int {
	return len(b.children)
}

// Parent returns the block this block is attached to, or nil.
func (b *Block) Parent() *Block {
	return b.parent
}

// Child returns the sub-block attached under id, or nil.
func (b *Block) Child(id int) *Block {
	return b.children[id]
}

// Weight returns the weight of the sub-block attached under id, or 0 when no
// such block exists.
func (b *Block) Weight(id int) float64 {
	return b.weights[id]
}

// ChildIDs returns the attached block ids in ascending order.
//
// The returned slice is a copy; callers may modify it freely.
func (b *Block) ChildIDs() []int {
	if b.childIDs == nil {
		ids := make([]int, 0, len(b.children))
		for id := range b.children {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		b.childIDs = ids
	}

	return slices.Clone(b.childIDs)
}

// ColLower returns the lower bound of column i.
func (b *Block) ColLower(i int) float64 {
	return b.cols[i].lower
}

// ColUpper returns the upper bound of column i.
func (b *Block) ColUpper(i int) float64 {
	return b.cols[i].upper
}

// ObjCoeff returns the objective coefficient of column i in the block's sense.
func (b *Block) ObjCoeff(i int) float64 {
	return b.cols[i].obj
}

// ColType returns the variable category of column i.
func (b *Block) ColType(i int) types.VarType {
	return b.cols[i].vtype
}

// RowLower returns the lower bound of row i.
func (b *Block) RowLower(i int) float64 {
	return b.rows[i].lower
}

// RowUpper returns the upper bound of row i.
func (b *Block) RowUpper(i int) float64 {
	return b.rows[i].upper
}

// RowTerms returns the terms of row i in insertion order.
//
// The returned slice is a copy; callers may modify it freely.
func (b *Block) RowTerms(i int) []Term {
	return slices.Clone(b.rows[i].terms)
}
