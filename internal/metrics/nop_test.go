package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stochkit/blockpart/types"
)

func TestNewNop(t *testing.T) {
	collector := NewNop()

	require.NotNil(t, collector)
	require.IsType(t, &NopMetrics{}, collector)
}

func TestNopMetrics_LoaderMetrics(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordStateTransition(types.StateUnloaded, types.StateMasterLoaded, 1.5)
		collector.RecordStateTransition(types.LoadState(999), types.LoadState(1000), -1.0)
		collector.RecordStateChangeDropped()
		collector.RecordLoadDuration("stochastic", 0.25)
		collector.RecordLoadDuration("", -1)
		collector.RecordLoadAttempt("structured", true)
		collector.RecordLoadAttempt("structured", false)
		collector.RecordOwnedBlocks(0)
		collector.RecordOwnedBlocks(-1)
		collector.RecordBlockLoaded(1024, 0.001)
	})
}

func TestNopMetrics_SolveMetrics(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordSolveDuration("dual", 12.5)
		collector.RecordSolveDuration("", 0)
		collector.RecordSolveAttempt("benders", true)
		collector.RecordSolveAttempt("benders", false)
	})
}

func TestNopMetrics_CommMetrics(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordCollectiveDuration("gather", 0.05)
		collector.RecordKVOperationDuration("put", 0.002)
		collector.RecordGroupSize(8)
		collector.RecordGroupSize(0)
	})
}

func BenchmarkNopMetrics_RecordStateTransition(b *testing.B) {
	collector := NewNop()
	for b.Loop() {
		collector.RecordStateTransition(types.StateUnloaded, types.StateMasterLoaded, 1.5)
	}
}

func BenchmarkNopMetrics_RecordBlockLoaded(b *testing.B) {
	collector := NewNop()
	for b.Loop() {
		collector.RecordBlockLoaded(1024, 0.001)
	}
}
