package blockpart

// Option configures a Loader with optional dependencies.
type Option func(*loaderOptions)

// loaderOptions holds optional Loader configuration.
type loaderOptions struct {
	logger       Logger
	metrics      MetricsCollector
	communicator Communicator
	assigner     Assigner
	verifyMaster bool
}

// WithLogger sets a structured logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	ldr, err := blockpart.New(&cfg, engine, root,
//	    blockpart.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *loaderOptions) {
		o.metrics = metrics
	}
}

// WithCommunicator sets the process-group communicator.
//
// Without this option the loader runs as a single-process session using
// comm.Single.
//
// Parameters:
//   - c: Communicator implementation covering this worker's group
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	c, err := comm.NewNATS(ctx, nc, comm.Config{Group: "job-42", Rank: rank, Size: size})
//	ldr, err := blockpart.New(&cfg, engine, root, blockpart.WithCommunicator(c))
func WithCommunicator(c Communicator) Option {
	return func(o *loaderOptions) {
		o.communicator = c
	}
}

// WithAssigner sets the block ownership assigner.
//
// Without this option blocks are distributed round-robin. Custom assigners
// must be deterministic: every worker evaluates the assigner locally and the
// results must tile consistently across the group.
//
// Parameters:
//   - a: Assigner implementation
//
// Returns:
//   - Option: Functional option for New
func WithAssigner(a Assigner) Option {
	return func(o *loaderOptions) {
		o.assigner = a
	}
}

// WithMasterVerification enables master fingerprint verification.
//
// Before transmitting the master block, the group exchanges fingerprints of
// the formatted master data; any disagreement fails the load with
// ErrMasterMismatch before the master data reaches the engine. Adds one
// collective to the load sequence.
//
// Returns:
//   - Option: Functional option for New
func WithMasterVerification() Option {
	return func(o *loaderOptions) {
		o.verifyMaster = true
	}
}
