package comm

import (
	"fmt"
	"time"

	"github.com/stochkit/blockpart/internal/logging"
	"github.com/stochkit/blockpart/internal/metrics"
	"github.com/stochkit/blockpart/types"
)

// Default configuration values for the NATS communicator.
const (
	// DefaultGroup is the default collective group name.
	DefaultGroup = "default"

	// DefaultBucketPrefix prefixes derived KV bucket names.
	DefaultBucketPrefix = "blockpart-comm"

	// DefaultOpTimeout is the default maximum duration of a single collective.
	DefaultOpTimeout = 30 * time.Second

	// DefaultTTL is the default expiry for finished collective contributions.
	DefaultTTL = 5 * time.Minute
)

// Config configures the NATS communicator.
//
// Required fields:
//   - Rank
//   - Size
//
// All other fields have defaults applied by applyDefaults(). Two independent
// jobs sharing one NATS deployment must use distinct groups (or distinct
// buckets), otherwise their contributions collide.
type Config struct {
	// Group names the collective group. It scopes the default bucket name so
	// independent groups on a shared NATS deployment stay isolated.
	Group string

	// Bucket overrides the JetStream KV bucket used for contributions.
	// Empty means derive it from Group.
	Bucket string

	// Rank is this worker's 0-based position in the group.
	Rank int

	// Size is the total number of workers in the group.
	Size int

	// OpTimeout bounds how long a collective waits for the rest of the
	// group before giving up.
	OpTimeout time.Duration

	// TTL expires contribution entries of finished operations. Zero keeps
	// them until the bucket is deleted.
	TTL time.Duration

	// Logger receives communicator diagnostics. Defaults to a no-op logger.
	Logger types.Logger

	// Metrics receives collective and KV timings. Defaults to a no-op
	// collector.
	Metrics types.CommMetrics
}

// applyDefaults fills unset optional fields with project defaults.
func (cfg *Config) applyDefaults() {
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.Bucket == "" {
		cfg.Bucket = fmt.Sprintf("%s-%s", DefaultBucketPrefix, cfg.Group)
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
}

// Validate checks the configuration for consistency.
//
// Returns:
//   - error: nil if valid, otherwise an error wrapping ErrInvalidTopology or
//     ErrInvalidConfig describing the first violated rule
func (cfg *Config) Validate() error {
	// Rule 1: the (Rank, Size) pair must describe a legal group position.
	if err := (types.Topology{Rank: cfg.Rank, Size: cfg.Size}).Validate(); err != nil {
		return err
	}

	// Rule 2: OpTimeout sanity.
	if cfg.OpTimeout < 0 {
		return fmt.Errorf("%w: OpTimeout must not be negative, got %v",
			types.ErrInvalidConfig, cfg.OpTimeout)
	}

	// Rule 3: contributions must outlive the operation that wrote them.
	if cfg.TTL > 0 && cfg.TTL < cfg.OpTimeout {
		return fmt.Errorf("%w: TTL (%v) must be >= OpTimeout (%v) so in-flight contributions do not expire",
			types.ErrInvalidConfig, cfg.TTL, cfg.OpTimeout)
	}

	return nil
}
