package model

import "errors"

var (
	// ErrColumnRange indicates a row term references a column index outside
	// the block it targets.
	ErrColumnRange = errors.New("term column index out of range")

	// ErrNoParent indicates a parent term was used on a block that is not
	// attached to a parent.
	ErrNoParent = errors.New("parent term on a block with no parent")

	// ErrNilChild indicates AttachChild was called with a nil block.
	ErrNilChild = errors.New("child block is required")

	// ErrInvalidBlockID indicates a non-positive block id.
	ErrInvalidBlockID = errors.New("block id must be positive")

	// ErrDuplicateBlockID indicates the block id is already attached.
	ErrDuplicateBlockID = errors.New("block id already attached")

	// ErrAlreadyAttached indicates the child already has a parent.
	ErrAlreadyAttached = errors.New("block already attached to a parent")

	// ErrInvalidWeight indicates a non-positive block weight.
	ErrInvalidWeight = errors.New("block weight must be positive")
)
