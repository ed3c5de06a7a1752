package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	LoaderMetrics
	SolveMetrics
	CommMetrics
}

// LoaderMetrics defines metrics for problem loading operations.
type LoaderMetrics interface {
	// RecordStateTransition records a loader state transition event.
	RecordStateTransition(from, to LoadState, duration float64)

	// RecordStateChangeDropped records when state change notifications are
	// dropped due to slow subscribers.
	RecordStateChangeDropped()

	// RecordLoadDuration records the time taken by a complete load.
	//
	// Parameters:
	//   - layout: Problem layout ("stochastic", "structured")
	//   - duration: Time taken in seconds
	RecordLoadDuration(layout string, duration float64)

	// RecordLoadAttempt records a load attempt (success or failure).
	//
	// Parameters:
	//   - layout: Problem layout
	//   - success: true if the load succeeded, false otherwise
	RecordLoadAttempt(layout string, success bool)

	// RecordOwnedBlocks sets the number of blocks owned by this worker (gauge metric).
	RecordOwnedBlocks(count int)

	// RecordBlockLoaded records transmission of one block to the engine.
	//
	// Parameters:
	//   - nonzeros: Number of nonzero matrix entries transmitted
	//   - duration: Time taken in seconds
	RecordBlockLoaded(nonzeros int, duration float64)
}

// SolveMetrics defines metrics for solve dispatch operations.
type SolveMetrics interface {
	// RecordSolveDuration records the wall time of a solve.
	//
	// Parameters:
	//   - method: Solve method ("dual", "benders", "extensive", "branch-and-bound")
	//   - duration: Time taken in seconds
	RecordSolveDuration(method string, duration float64)

	// RecordSolveAttempt records a solve attempt (success or failure).
	//
	// Parameters:
	//   - method: Solve method
	//   - success: true if the solve returned without error, false otherwise
	RecordSolveAttempt(method string, success bool)
}

// CommMetrics defines metrics for process-group collective operations.
type CommMetrics interface {
	// RecordCollectiveDuration records the end-to-end latency of a collective.
	//
	// Parameters:
	//   - operation: Collective type ("all_reduce_max", "all_gather")
	//   - duration: Time taken in seconds
	RecordCollectiveDuration(operation string, duration float64)

	// RecordKVOperationDuration records bucket operation latency underneath
	// a collective.
	//
	// Parameters:
	//   - operation: Operation type ("put", "watch")
	//   - duration: Time taken in seconds
	RecordKVOperationDuration(operation string, duration float64)

	// RecordGroupSize sets the process group size seen by the communicator
	// (gauge metric).
	RecordGroupSize(size int)
}
