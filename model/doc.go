// Package model provides an in-memory builder for block-structured problems.
//
// A problem is a two-level tree: a master block owning the coupling
// variables, and sub-blocks attached to it by positive integer id. Sub-block
// rows may reference master columns through parent terms, which is how the
// coupling structure is expressed.
//
// # Building a Problem
//
// Columns and rows are appended in order; indices are stable once created:
//
//	master := model.NewBlock()
//	x := master.AddColumn(0, 10, 1.0, types.Continuous)
//
//	sub := model.NewBlock()
//	y := sub.AddColumn(0, 5, 2.0, types.Continuous)
//	_ = master.AttachChild(1, 0.5, sub)
//
//	// x + 2y >= 3, referencing the master column via a parent term.
//	_, _ = sub.AddRow(3, math.Inf(1),
//	    model.Term{Col: x, Coef: 1, Parent: true},
//	    model.Term{Col: y, Coef: 2},
//	)
//
// Parent terms are only legal after the block is attached, and are validated
// against the parent's column count both when the row is added and again when
// the block is formatted for transmission.
//
// Blocks are not safe for concurrent mutation; build the model before handing
// it to a loader.
package model
