package blockpart

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stochkit/blockpart/internal/metrics"
)

// NewPrometheusMetrics creates a Prometheus-backed MetricsCollector for use
// with WithMetrics.
//
// Instruments cover the loader (state transitions, load attempts and
// durations, transmitted blocks), solves (attempts and durations by method)
// and the communicator (collective and bucket operation latencies). They are
// registered lazily on the first record, so constructing a collector that is
// never used registers nothing.
//
// One collector serves one registry. Share the collector between loaders
// instead of constructing a second one against the same registerer, which
// would panic on duplicate registration.
//
// Parameters:
//   - reg: Prometheus registerer (nil uses prometheus.DefaultRegisterer)
//   - namespace: Metric name prefix (empty uses "blockpart")
//
// Returns:
//   - MetricsCollector: Collector recording loader, solve, and comm metrics
//
// Example:
//
//	collector := blockpart.NewPrometheusMetrics(nil, "")
//	ldr, err := blockpart.New(&cfg, engine, root, blockpart.WithMetrics(collector))
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
