// Package metrics provides metrics collector implementations for the
// blockpart library.
package metrics

import "github.com/stochkit/blockpart/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	loader, err := blockpart.New(&cfg, engine, root, blockpart.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// LoaderMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.LoadState, _ /* duration */ float64) {
	// No-op
}

// RecordStateChangeDropped discards the state change dropped metric.
func (n *NopMetrics) RecordStateChangeDropped() {
	// No-op
}

// RecordLoadDuration discards the load duration metric.
func (n *NopMetrics) RecordLoadDuration(_ /* layout */ string, _ /* duration */ float64) {
	// No-op
}

// RecordLoadAttempt discards the load attempt metric.
func (n *NopMetrics) RecordLoadAttempt(_ /* layout */ string, _ /* success */ bool) {
	// No-op
}

// RecordOwnedBlocks discards the owned block count metric.
func (n *NopMetrics) RecordOwnedBlocks(_ /* count */ int) {
	// No-op
}

// RecordBlockLoaded discards the block transmission metric.
func (n *NopMetrics) RecordBlockLoaded(_ /* nonzeros */ int, _ /* duration */ float64) {
	// No-op
}

// SolveMetrics implementation

// RecordSolveDuration discards the solve duration metric.
func (n *NopMetrics) RecordSolveDuration(_ /* method */ string, _ /* duration */ float64) {
	// No-op
}

// RecordSolveAttempt discards the solve attempt metric.
func (n *NopMetrics) RecordSolveAttempt(_ /* method */ string, _ /* success */ bool) {
	// No-op
}

// CommMetrics implementation

// RecordCollectiveDuration discards the collective latency metric.
func (n *NopMetrics) RecordCollectiveDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordKVOperationDuration discards the KV operation duration metric.
func (n *NopMetrics) RecordKVOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordGroupSize discards the group size metric.
func (n *NopMetrics) RecordGroupSize(_ /* size */ int) {
	// No-op
}
