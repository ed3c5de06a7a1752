package types

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SolveType selects the method used to solve the loaded problem.
//
// The zero value is SolveDual. String forms are accepted in configuration
// files and normalized case-insensitively; unrecognized forms are
// configuration errors.
type SolveType int

const (
	// SolveDual solves with dual decomposition across the block structure.
	SolveDual SolveType = iota

	// SolveBenders solves with Benders decomposition.
	SolveBenders

	// SolveExtensive solves the extensive form as a single monolithic problem.
	// This method always runs on a single process.
	SolveExtensive

	// SolveBranchAndBound solves with decomposition-based branch and bound.
	SolveBranchAndBound
)

// solveTypeNames maps canonical string forms to solve types.
// "bb" is accepted as a short alias for branch and bound.
var solveTypeNames = map[string]SolveType{
	"dual":             SolveDual,
	"benders":          SolveBenders,
	"extensive":        SolveExtensive,
	"branch-and-bound": SolveBranchAndBound,
	"bb":               SolveBranchAndBound,
}

// ParseSolveType converts a string form to a SolveType.
//
// Accepted forms (case-insensitive): "dual", "benders", "extensive",
// "branch-and-bound", "bb".
//
// Returns:
//   - SolveType: The parsed solve type
//   - error: ErrUnknownSolveType (wrapped) for unrecognized strings
func ParseSolveType(s string) (SolveType, error) {
	if t, ok := solveTypeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}

	return SolveDual, fmt.Errorf("%w: %q", ErrUnknownSolveType, s)
}

// Valid reports whether t is one of the supported solve types.
func (t SolveType) Valid() bool {
	switch t {
	case SolveDual, SolveBenders, SolveExtensive, SolveBranchAndBound:
		return true
	default:
		return false
	}
}

// String returns the canonical string form of the solve type.
func (t SolveType) String() string {
	switch t {
	case SolveDual:
		return "dual"
	case SolveBenders:
		return "benders"
	case SolveExtensive:
		return "extensive"
	case SolveBranchAndBound:
		return "branch-and-bound"
	default:
		return "unknown"
	}
}

// MarshalYAML implements yaml.Marshaler using the canonical string form.
func (t SolveType) MarshalYAML() (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSolveType, int(t))
	}

	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler accepting the string forms
// recognized by ParseSolveType.
func (t *SolveType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownSolveType, err.Error())
	}

	parsed, err := ParseSolveType(s)
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

// SolveStatus represents the terminal status reported by the engine after a
// solve. The zero value is StatusUnknown.
type SolveStatus int

const (
	// StatusUnknown indicates the engine reported no recognizable status,
	// or no solve has run yet.
	StatusUnknown SolveStatus = iota

	// StatusOptimal indicates the solve reached a proven optimal solution.
	StatusOptimal

	// StatusInfeasible indicates the problem was proven infeasible.
	StatusInfeasible

	// StatusUnbounded indicates the problem was proven unbounded.
	StatusUnbounded

	// StatusIterationLimit indicates the iteration limit stopped the solve.
	StatusIterationLimit

	// StatusTimeLimit indicates the time limit stopped the solve.
	StatusTimeLimit

	// StatusAborted indicates the solve was interrupted before completion.
	StatusAborted
)

// String returns the string representation of the status.
func (s SolveStatus) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	case StatusIterationLimit:
		return "IterationLimit"
	case StatusTimeLimit:
		return "TimeLimit"
	case StatusAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// SolveResult bundles the outcome of a solve retrieved from the engine.
type SolveResult struct {
	// Status is the terminal solve status.
	Status SolveStatus

	// Iterations is the number of method iterations performed.
	Iterations int

	// Nodes is the number of branch-and-bound nodes explored (0 for
	// methods without a tree search).
	Nodes int

	// WallTime is the elapsed wall-clock solve time.
	WallTime time.Duration

	// PrimalBound is the best primal objective bound found.
	PrimalBound float64

	// DualBound is the best dual objective bound found.
	DualBound float64

	// Primal holds the primal solution values over the full column space.
	Primal []float64

	// Dual holds the dual values of the coupling rows.
	Dual []float64
}

// Gap returns the relative gap between the primal and dual bounds.
//
// The gap is |primal - dual| / (1e-10 + |primal|), following the usual
// decomposition convergence measure.
func (r *SolveResult) Gap() float64 {
	return math.Abs(r.PrimalBound-r.DualBound) / (1e-10 + math.Abs(r.PrimalBound))
}
