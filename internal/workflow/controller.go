// Package workflow implements the per-operation asynchronous state
// machine: one controller owns one in-flight long operation, its
// result, and its error, fully independent of every other controller.
package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dyike/quantdesk/internal/api"
)

// Phase is the lifecycle tag of a controller.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is an observer snapshot. Result is only non-nil in
// PhaseSucceeded; Err is only non-empty in PhaseFailed. The previous
// result survives a new Running phase until it is replaced, so
// switching views never clears unrelated data.
type State[T any] struct {
	Phase  Phase
	Result *T
	Err    string
}

// Guard decides whether a resolution still belongs to the current
// session. The session coordinator implements it.
type Guard interface {
	Snapshot() uint64
	Valid(gen uint64) bool
}

// Controller serializes invocations of one workflow. A Run while
// Running is rejected outright: never queued, never cancelling the
// in-flight call, so result ordering stays deterministic.
type Controller[T any] struct {
	name  string
	guard Guard

	mu     sync.Mutex
	phase  Phase
	result *T
	errMsg string
	done   chan struct{}
}

// NewController creates an idle controller.
func NewController[T any](name string, guard Guard) *Controller[T] {
	done := make(chan struct{})
	close(done)
	return &Controller[T]{
		name:  name,
		guard: guard,
		phase: PhaseIdle,
		done:  done,
	}
}

// State returns a consistent snapshot. Transitions happen under the
// same lock, so an observer never sees a partially-updated payload.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{Phase: c.phase, Result: c.result, Err: c.errMsg}
}

// Running reports whether an invocation is in flight.
func (c *Controller[T]) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseRunning
}

// Done returns a channel closed when the current invocation resolves.
// When nothing is running the returned channel is already closed.
func (c *Controller[T]) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Run starts the operation asynchronously and reports whether it was
// accepted. It returns false, leaving all state untouched, when an
// invocation is already Running. The operation itself performs its own
// validation before touching the network; a validation failure lands in
// PhaseFailed like any other pre-flight error.
func (c *Controller[T]) Run(ctx context.Context, op func(context.Context) (*T, error)) bool {
	c.mu.Lock()
	if c.phase == PhaseRunning {
		c.mu.Unlock()
		log.Debug().Str("workflow", c.name).Msg("run rejected: already running")
		return false
	}

	c.phase = PhaseRunning
	c.errMsg = ""
	c.done = make(chan struct{})
	done := c.done
	gen := c.guard.Snapshot()
	c.mu.Unlock()

	go func() {
		payload, err := op(ctx)
		c.resolve(gen, done, payload, err)
		close(done)
	}()
	return true
}

// resolve applies the operation outcome, unless the invocation no
// longer owns the controller: a Reset followed by a newer Run replaces
// the done channel, and a session generation bump means a late result
// from an abandoned session must not resurrect authenticated-looking
// data.
func (c *Controller[T]) resolve(gen uint64, done chan struct{}, payload *T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != done {
		// A newer invocation took over while this one was in flight.
		// Its phase is not ours to touch.
		log.Debug().Str("workflow", c.name).Msg("discarding resolution from a superseded invocation")
		return
	}

	if !c.guard.Valid(gen) {
		log.Debug().Str("workflow", c.name).Msg("discarding resolution from abandoned session")
		if c.phase == PhaseRunning {
			c.phase = PhaseIdle
		}
		return
	}

	switch {
	case err == nil:
		c.phase = PhaseSucceeded
		c.result = payload
		c.errMsg = ""
	case errors.Is(err, api.ErrSessionExpired):
		// Global teardown is already in motion; the view is about to
		// be replaced, so no per-workflow error is recorded.
		c.phase = PhaseIdle
	default:
		c.phase = PhaseFailed
		c.errMsg = api.UserMessage(err)
		log.Warn().Str("workflow", c.name).Err(err).Msg("workflow failed")
	}
}

// Reset forces the controller back to Idle, dropping result and error.
// The coordinator calls it during session teardown.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.result = nil
	c.errMsg = ""
}

// Wait blocks until the current invocation resolves or the context is
// cancelled, then returns the latest snapshot.
func (c *Controller[T]) Wait(ctx context.Context) State[T] {
	select {
	case <-c.Done():
	case <-ctx.Done():
	}
	return c.State()
}
