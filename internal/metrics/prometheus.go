package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stochkit/blockpart/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Instruments are created and registered lazily on first use, so constructing
// the collector never panics on duplicate registration in tests that build
// several loaders against the default registerer.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Loader metrics
	stateTransitions  *prometheus.CounterVec
	stateDrops        prometheus.Counter
	loadDuration      *prometheus.HistogramVec
	loadAttempts      *prometheus.CounterVec
	ownedBlocks       prometheus.Gauge
	blocksLoaded      prometheus.Counter
	blockNonzeros     prometheus.Counter
	blockLoadDuration prometheus.Histogram

	// Solve metrics
	solveDuration *prometheus.HistogramVec
	solveAttempts *prometheus.CounterVec

	// Comm metrics
	collectiveDuration *prometheus.HistogramVec
	kvOpDuration       *prometheus.HistogramVec
	groupSize          prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "blockpart" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "blockpart"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "state_transitions_total",
			Help:      "Total loader state transitions by source and target state.",
		}, []string{"from", "to"})

		p.stateDrops = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "state_change_drops_total",
			Help:      "State change notifications dropped due to slow subscribers.",
		})

		p.loadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "load_duration_seconds",
			Help:      "Duration of complete problem loads in seconds by layout.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}, []string{"layout"})

		p.loadAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "load_attempts_total",
			Help:      "Total load attempts by layout and result (success|failure).",
		}, []string{"layout", "result"})

		p.ownedBlocks = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "owned_blocks",
			Help:      "Number of blocks owned by this worker.",
		})

		p.blocksLoaded = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "blocks_loaded_total",
			Help:      "Total blocks transmitted to the engine.",
		})

		p.blockNonzeros = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "block_nonzeros_total",
			Help:      "Total nonzero matrix entries transmitted to the engine.",
		})

		p.blockLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "loader",
			Name:      "block_load_duration_seconds",
			Help:      "Duration of single block transmissions in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		})

		p.solveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "duration_seconds",
			Help:      "Wall time of engine solves in seconds by method.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms .. ~14min
		}, []string{"method"})

		p.solveAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solve",
			Name:      "attempts_total",
			Help:      "Total solve attempts by method and result (success|failure).",
		}, []string{"method", "result"})

		p.collectiveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "collective_duration_seconds",
			Help:      "End-to-end latency of group collectives in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}, []string{"operation"})

		p.kvOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "kv_operation_duration_seconds",
			Help:      "Latency of bucket operations underneath collectives in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation"})

		p.groupSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "group_size",
			Help:      "Process group size seen by the communicator.",
		})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.stateDrops)
		p.reg.MustRegister(p.loadDuration)
		p.reg.MustRegister(p.loadAttempts)
		p.reg.MustRegister(p.ownedBlocks)
		p.reg.MustRegister(p.blocksLoaded)
		p.reg.MustRegister(p.blockNonzeros)
		p.reg.MustRegister(p.blockLoadDuration)
		p.reg.MustRegister(p.solveDuration)
		p.reg.MustRegister(p.solveAttempts)
		p.reg.MustRegister(p.collectiveDuration)
		p.reg.MustRegister(p.kvOpDuration)
		p.reg.MustRegister(p.groupSize)
	})
}

func result(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

// LoaderMetrics implementation

// RecordStateTransition counts a loader state transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.LoadState, _ /* duration */ float64) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordStateChangeDropped counts a dropped state notification.
func (p *PrometheusCollector) RecordStateChangeDropped() {
	p.ensureRegistered()
	p.stateDrops.Inc()
}

// RecordLoadDuration observes the duration of a complete load.
func (p *PrometheusCollector) RecordLoadDuration(layout string, duration float64) {
	p.ensureRegistered()
	p.loadDuration.WithLabelValues(layout).Observe(duration)
}

// RecordLoadAttempt counts a load attempt outcome.
func (p *PrometheusCollector) RecordLoadAttempt(layout string, success bool) {
	p.ensureRegistered()
	p.loadAttempts.WithLabelValues(layout, result(success)).Inc()
}

// RecordOwnedBlocks sets the owned block gauge.
func (p *PrometheusCollector) RecordOwnedBlocks(count int) {
	p.ensureRegistered()
	p.ownedBlocks.Set(float64(count))
}

// RecordBlockLoaded counts one block transmission and observes its latency.
func (p *PrometheusCollector) RecordBlockLoaded(nonzeros int, duration float64) {
	p.ensureRegistered()
	p.blocksLoaded.Inc()
	p.blockNonzeros.Add(float64(nonzeros))
	p.blockLoadDuration.Observe(duration)
}

// SolveMetrics implementation

// RecordSolveDuration observes the wall time of a solve.
func (p *PrometheusCollector) RecordSolveDuration(method string, duration float64) {
	p.ensureRegistered()
	p.solveDuration.WithLabelValues(method).Observe(duration)
}

// RecordSolveAttempt counts a solve attempt outcome.
func (p *PrometheusCollector) RecordSolveAttempt(method string, success bool) {
	p.ensureRegistered()
	p.solveAttempts.WithLabelValues(method, result(success)).Inc()
}

// CommMetrics implementation

// RecordCollectiveDuration observes the end-to-end latency of a collective.
func (p *PrometheusCollector) RecordCollectiveDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.collectiveDuration.WithLabelValues(operation).Observe(duration)
}

// RecordKVOperationDuration observes bucket operation latency.
func (p *PrometheusCollector) RecordKVOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.kvOpDuration.WithLabelValues(operation).Observe(duration)
}

// RecordGroupSize sets the group size gauge.
func (p *PrometheusCollector) RecordGroupSize(size int) {
	p.ensureRegistered()
	p.groupSize.Set(float64(size))
}
