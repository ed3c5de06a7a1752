// Package lifecycle provides the validated loader state machine.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/stochkit/blockpart/types"
)

// ErrInvalidTransition indicates a state change the loader lifecycle does not
// allow. Hitting it means the caller drove the machine out of order.
var ErrInvalidTransition = errors.New("invalid state transition")

// Machine manages loader state transitions.
//
// Implements a validated state machine over types.LoadState:
//
//	Unloaded → MasterLoaded → BlocksLoaded → Finalized
//
// StateFailed is reachable from every loading state, StateClosed from every
// state. Valid transitions are enforced to prevent out-of-order engine calls.
//
// State changes fan out to subscribers without blocking the caller; slow
// subscribers drop notifications rather than stalling a load.
type Machine struct {
	current atomic.Int32 // types.LoadState

	mu         sync.Mutex
	lastChange time.Time

	logger  types.Logger
	metrics types.LoaderMetrics

	// Fan-out to subscribers
	subscribers      *xsync.Map[uint64, *stateSubscriber]
	nextSubscriberID atomic.Uint64
}

// NewMachine creates a new state machine starting in StateUnloaded.
//
// Parameters:
//   - logger: Logger for state transitions
//   - metrics: Metrics collector for loader operations
//
// Returns:
//   - *Machine: A new state machine instance
func NewMachine(logger types.Logger, metrics types.LoaderMetrics) *Machine {
	m := &Machine{
		logger:      logger,
		metrics:     metrics,
		lastChange:  time.Now(),
		subscribers: xsync.NewMap[uint64, *stateSubscriber](),
	}
	m.current.Store(int32(types.StateUnloaded))

	return m
}

// State returns the current loader state.
//
// This method is thread-safe and can be called concurrently.
func (m *Machine) State() types.LoadState {
	return types.LoadState(m.current.Load())
}

// TransitionTo moves the machine to the next state.
//
// A transition to the current state is a no-op. Illegal transitions leave the
// machine unchanged and return an error wrapping ErrInvalidTransition.
//
// Parameters:
//   - next: Target state
//
// Returns:
//   - error: nil on success or no-op, ErrInvalidTransition otherwise
func (m *Machine) TransitionTo(next types.LoadState) error {
	m.mu.Lock()
	cur := types.LoadState(m.current.Load())
	if cur == next {
		m.mu.Unlock()

		return nil
	}
	if !validNext(cur, next) {
		m.mu.Unlock()

		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, next)
	}

	now := time.Now()
	elapsed := now.Sub(m.lastChange).Seconds()
	m.lastChange = now
	m.current.Store(int32(next))
	m.mu.Unlock()

	m.logger.Debug("state transition", "from", cur.String(), "to", next.String())
	m.metrics.RecordStateTransition(cur, next, elapsed)

	m.subscribers.Range(func(_ uint64, sub *stateSubscriber) bool {
		sub.trySend(next, m.metrics)

		return true
	})

	return nil
}

// validNext reports whether the lifecycle allows moving from cur to next.
func validNext(cur, next types.LoadState) bool {
	if next == types.StateClosed {
		return true
	}

	switch cur {
	case types.StateUnloaded:
		return next == types.StateMasterLoaded || next == types.StateFailed
	case types.StateMasterLoaded:
		return next == types.StateBlocksLoaded || next == types.StateFailed
	case types.StateBlocksLoaded:
		return next == types.StateFinalized || next == types.StateFailed
	default:
		return false
	}
}

// Subscribe returns a channel that receives state change notifications.
//
// The returned channel is buffered (size 8), enough for a full load
// progression plus teardown without dropping when the subscriber lags a
// little. The subscriber receives the current state immediately upon
// subscription.
//
// Returns:
//   - <-chan types.LoadState: Channel that receives state updates
//   - func(): Unsubscribe function to clean up resources
//
// Example:
//
//	ch, unsubscribe := machine.Subscribe()
//	defer unsubscribe()
//	for state := range ch {
//	    fmt.Printf("loader state: %s\n", state)
//	}
func (m *Machine) Subscribe() (<-chan types.LoadState, func()) {
	id := m.nextSubscriberID.Add(1)

	sub := &stateSubscriber{ch: make(chan types.LoadState, 8)}
	m.subscribers.Store(id, sub)

	// Immediately send the current state
	sub.trySend(m.State(), m.metrics)

	unsubscribe := func() {
		m.removeSubscriber(id)
	}

	return sub.ch, unsubscribe
}

// removeSubscriber removes a subscriber and closes its channel.
func (m *Machine) removeSubscriber(id uint64) {
	if sub, ok := m.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

// Shutdown closes all subscriber channels.
//
// Called during loader teardown after the terminal state was emitted; new
// subscriptions after Shutdown receive no notifications.
func (m *Machine) Shutdown() {
	m.subscribers.Range(func(id uint64, _ *stateSubscriber) bool {
		m.removeSubscriber(id)

		return true
	})
}
