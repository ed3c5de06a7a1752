package comm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/stochkit/blockpart/types"
)

// Collective operation names, used in contribution keys.
const (
	opReduceMax = "reduce-max"
	opGather    = "gather"
)

// contribution is the KV payload a rank publishes for one collective.
type contribution struct {
	Rank   int     `json:"rank"`
	Values []int64 `json:"values"`
}

// NATS implements collectives for a fixed-size group over a JetStream KV
// bucket.
//
// Each collective allocates the next operation sequence number, publishes
// this rank's contribution under "<seq>.<op>.<rank>" and watches
// "<seq>.<op>.*" until every rank in the group has been observed. The result
// is then computed locally, so no member acts as a coordinator and all
// members compute identical results. The watch doubles as the barrier: no
// member can leave a collective before the whole group has entered it.
//
// All members must issue collectives in the same order. The sequence number
// is allocated locally per communicator, so a member skipping or reordering
// an operation pairs its contribution with the wrong peers and stalls the
// group until the operation times out.
//
// The NATS connection is owned by the caller and is not closed by the
// communicator.
type NATS struct {
	cfg     Config
	kv      jetstream.KeyValue
	logger  types.Logger
	metrics types.CommMetrics

	seq uint64 // collectives are SPMD-ordered, no concurrent callers
}

// Compile-time assertion that NATS implements Communicator.
var _ types.Communicator = (*NATS)(nil)

// NewNATS creates a communicator for a fixed group coordinating through
// JetStream.
//
// The contribution bucket is created if missing; concurrent creation by
// other group members is handled with retries. Every member must use the
// same Group/Bucket and Size, and a distinct Rank.
//
// Parameters:
//   - ctx: Context for bucket creation timeout/cancellation
//   - conn: Established NATS connection (owned by the caller)
//   - cfg: Group configuration; defaults are applied in place
//
// Returns:
//   - *NATS: Ready communicator
//   - error: ErrConnectionRequired, a configuration error, or a bucket
//     creation failure
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	c, err := comm.NewNATS(ctx, nc, comm.Config{Group: "job-42", Rank: rank, Size: size})
func NewNATS(ctx context.Context, conn *nats.Conn, cfg Config) (*NATS, error) {
	if conn == nil {
		return nil, ErrConnectionRequired
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := ensureBucket(ctx, js, cfg.Bucket, cfg.TTL)
	if err != nil {
		return nil, err
	}

	cfg.Metrics.RecordGroupSize(cfg.Size)

	return &NATS{
		cfg:     cfg,
		kv:      kv,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Rank returns this worker's 0-based position in the group.
func (c *NATS) Rank() int { return c.cfg.Rank }

// Size returns the total number of workers in the group.
func (c *NATS) Size() int { return c.cfg.Size }

// AllReduceMax combines vectors across the group, returning the elementwise
// maximum to every member.
//
// All members must supply vectors of the same length; a disagreement is
// reported as ErrDimensionMismatch.
func (c *NATS) AllReduceMax(ctx context.Context, values []int64) ([]int64, error) {
	contribs, err := c.exchange(ctx, opReduceMax, values)
	if err != nil {
		return nil, err
	}

	result := slices.Clone(values)
	for rank, vals := range contribs {
		if len(vals) != len(values) {
			return nil, fmt.Errorf("%w: rank %d contributed %d values to reduce-max, this rank has %d",
				types.ErrDimensionMismatch, rank, len(vals), len(values))
		}
		for i, v := range vals {
			if v > result[i] {
				result[i] = v
			}
		}
	}

	return result, nil
}

// AllGather collects every member's vector, indexed by rank.
//
// Contributions may have different lengths, including empty.
func (c *NATS) AllGather(ctx context.Context, values []int64) ([][]int64, error) {
	return c.exchange(ctx, opGather, values)
}

// exchange runs one collective round: publish this rank's contribution, then
// watch until all Size ranks have contributed. Returns the contributions
// indexed by rank (this rank's entry included).
func (c *NATS) exchange(ctx context.Context, op string, values []int64) ([][]int64, error) {
	c.seq++
	seq := c.seq

	start := time.Now()
	if err := c.publish(ctx, seq, op, values); err != nil {
		return nil, err
	}

	contribs, err := c.collect(ctx, seq, op)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start).Seconds()
	c.metrics.RecordCollectiveDuration(op, elapsed)
	c.logger.Debug("collective complete",
		"op", op, "seq", seq, "group_size", c.cfg.Size, "elapsed", elapsed)

	return contribs, nil
}

// publish writes this rank's contribution entry for the given operation.
func (c *NATS) publish(ctx context.Context, seq uint64, op string, values []int64) error {
	if values == nil {
		values = []int64{}
	}
	payload, err := json.Marshal(contribution{Rank: c.cfg.Rank, Values: values})
	if err != nil {
		return fmt.Errorf("failed to marshal contribution: %w", err)
	}

	key := fmt.Sprintf("%d.%s.%d", seq, op, c.cfg.Rank)
	start := time.Now()
	if _, err := c.kv.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("failed to publish contribution %s: %w", key, err)
	}
	c.metrics.RecordKVOperationDuration("put", time.Since(start).Seconds())

	return nil
}

// collect watches the operation's key space until all ranks are observed.
func (c *NATS) collect(ctx context.Context, seq uint64, op string) ([][]int64, error) {
	opCtx := ctx
	if c.cfg.OpTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
	}

	start := time.Now()
	watcher, err := c.kv.Watch(opCtx, fmt.Sprintf("%d.%s.*", seq, op))
	if err != nil {
		return nil, fmt.Errorf("failed to watch contributions: %w", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			c.logger.Error("failed to stop contribution watcher", "op", op, "seq", seq, "error", err)
		}
	}()

	contribs := make([][]int64, c.cfg.Size)
	observed := make([]bool, c.cfg.Size)
	remaining := c.cfg.Size

	for remaining > 0 {
		select {
		case <-opCtx.Done():
			return nil, fmt.Errorf("%w: observed %d of %d contributions for %s (seq %d): %v",
				types.ErrGroupIncomplete, c.cfg.Size-remaining, c.cfg.Size, op, seq, opCtx.Err())
		case entry := <-watcher.Updates():
			if entry == nil {
				// Nil entry marks the end of the initial replay.
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			var contrib contribution
			if err := json.Unmarshal(entry.Value(), &contrib); err != nil {
				return nil, fmt.Errorf("failed to unmarshal contribution %s: %w", entry.Key(), err)
			}
			if contrib.Rank < 0 || contrib.Rank >= c.cfg.Size {
				return nil, fmt.Errorf("%w: contribution from rank %d in group of size %d",
					types.ErrInvalidTopology, contrib.Rank, c.cfg.Size)
			}
			if observed[contrib.Rank] {
				continue
			}

			if contrib.Values == nil {
				contrib.Values = []int64{}
			}
			contribs[contrib.Rank] = contrib.Values
			observed[contrib.Rank] = true
			remaining--
		}
	}
	c.metrics.RecordKVOperationDuration("watch", time.Since(start).Seconds())

	return contribs, nil
}

// ensureBucket creates or opens the contribution KV bucket with retry logic.
//
// Multiple group members race to create the same bucket at startup; creation
// failures fall back to opening, and transient errors retry with exponential
// backoff.
func ensureBucket(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (jetstream.KeyValue, error) {
	cfg := jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1, // Keep only latest value per key
	}
	if ttl > 0 {
		cfg.TTL = ttl
	}

	const maxRetries = 5
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return kv, nil
		}

		// Another member created it first; just open it.
		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		// Exponential backoff: 10ms, 20ms, 40ms...
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries, no overflow risk
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		bucket, maxRetries, lastErr)
}
