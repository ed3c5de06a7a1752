package types

// LoadState represents the problem loading lifecycle state.
//
// States follow a defined progression during normal operation:
//
//	StateUnloaded → StateMasterLoaded → StateBlocksLoaded → StateFinalized
//
// A worker that owns no blocks skips StateBlocksLoaded-specific work but
// still passes through the state. Failure and release are terminal:
//
//	any state → StateFailed (load error, engine model freed)
//	any state → StateClosed (session released)
type LoadState int

const (
	// StateUnloaded is the initial state before any problem data is sent.
	StateUnloaded LoadState = iota

	// StateMasterLoaded indicates the master block reached the engine.
	StateMasterLoaded

	// StateBlocksLoaded indicates all owned sub-blocks reached the engine.
	StateBlocksLoaded

	// StateFinalized indicates the engine accepted the complete problem
	// and the session is ready to solve.
	StateFinalized

	// StateFailed indicates a load error occurred. The engine model has been
	// freed; only Close is meaningful afterwards.
	StateFailed

	// StateClosed indicates the engine session was released.
	StateClosed
)

// String returns the string representation of the state.
func (s LoadState) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateMasterLoaded:
		return "MasterLoaded"
	case StateBlocksLoaded:
		return "BlocksLoaded"
	case StateFinalized:
		return "Finalized"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
