package workflow

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/quantdesk/internal/api"
)

// fakeGuard is a session generation the tests can advance by hand.
type fakeGuard struct {
	gen atomic.Uint64
}

func (g *fakeGuard) Snapshot() uint64      { return g.gen.Load() }
func (g *fakeGuard) Valid(gen uint64) bool { return g.gen.Load() == gen }
func (g *fakeGuard) invalidate()           { g.gen.Add(1) }

type payload struct {
	Value string
}

func TestRunSuccessTransition(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	accepted := c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "done"}, nil
	})
	require.True(t, accepted)

	state := c.Wait(context.Background())
	assert.Equal(t, PhaseSucceeded, state.Phase)
	require.NotNil(t, state.Result)
	assert.Equal(t, "done", state.Result.Value)
	assert.Empty(t, state.Err)
}

func TestRunWhileRunningIsRejected(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	release := make(chan struct{})
	require.True(t, c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release
		return &payload{Value: "first"}, nil
	}))

	// Second run while Running: no-op, state unchanged.
	accepted := c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "second"}, nil
	})
	assert.False(t, accepted)
	assert.Equal(t, PhaseRunning, c.State().Phase)

	close(release)
	state := c.Wait(context.Background())
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Equal(t, "first", state.Result.Value)
}

func TestRunFailureRecordsMessage(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return nil, &api.RequestError{Message: "no qualifying stocks"}
	})

	state := c.Wait(context.Background())
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Equal(t, "no qualifying stocks", state.Err)
	assert.Nil(t, state.Result)
}

func TestRerunClearsPreviousError(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return nil, &api.RequestError{Message: "transient"}
	})
	c.Wait(context.Background())

	release := make(chan struct{})
	require.True(t, c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release
		return &payload{Value: "ok"}, nil
	}))

	assert.Empty(t, c.State().Err, "starting a run clears the previous error")
	close(release)

	state := c.Wait(context.Background())
	assert.Equal(t, PhaseSucceeded, state.Phase)
}

func TestResultSurvivesNextRunningPhase(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "first"}, nil
	})
	c.Wait(context.Background())

	release := make(chan struct{})
	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release
		return &payload{Value: "second"}, nil
	})

	state := c.State()
	assert.Equal(t, PhaseRunning, state.Phase)
	require.NotNil(t, state.Result, "previous result stays visible while running")
	assert.Equal(t, "first", state.Result.Value)

	close(release)
	state = c.Wait(context.Background())
	assert.Equal(t, "second", state.Result.Value)
}

func TestSessionExpiryResolutionReturnsToIdle(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return nil, fmt.Errorf("analyze: %w", api.ErrSessionExpired)
	})

	state := c.Wait(context.Background())
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Empty(t, state.Err, "expiry is not a per-workflow error")
}

func TestAbandonedResolutionIsDiscarded(t *testing.T) {
	guard := &fakeGuard{}
	c := NewController[payload]("test", guard)

	release := make(chan struct{})
	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release
		return &payload{Value: "stale"}, nil
	})

	// The session ends while the call is in flight.
	guard.invalidate()
	close(release)

	state := c.Wait(context.Background())
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Nil(t, state.Result, "a late result must not resurrect session data")
}

func TestSupersededResolutionLeavesNewerInvocationRunning(t *testing.T) {
	guard := &fakeGuard{}
	c := NewController[payload]("test", guard)

	release1 := make(chan struct{})
	require.True(t, c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release1
		return &payload{Value: "stale"}, nil
	}))
	done1 := c.Done()

	// The session expires mid-flight: the coordinator bumps the
	// generation and resets the controller.
	guard.invalidate()
	c.Reset()

	// After re-login a fresh invocation takes over.
	release2 := make(chan struct{})
	require.True(t, c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release2
		return &payload{Value: "fresh"}, nil
	}))

	// The first invocation finally resolves. It no longer owns the
	// controller, so the newer one must stay Running.
	close(release1)
	<-done1
	assert.Equal(t, PhaseRunning, c.State().Phase)
	assert.False(t, c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "third"}, nil
	}), "a run while the newer invocation is in flight is rejected")

	close(release2)
	state := c.Wait(context.Background())
	assert.Equal(t, PhaseSucceeded, state.Phase)
	require.NotNil(t, state.Result)
	assert.Equal(t, "fresh", state.Result.Value)
}

func TestIndependentControllersDoNotInterfere(t *testing.T) {
	guard := &fakeGuard{}
	a := NewController[payload]("a", guard)
	b := NewController[payload]("b", guard)

	a.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return nil, &api.RequestError{Message: "a failed"}
	})
	b.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "b ok"}, nil
	})

	aState := a.Wait(context.Background())
	bState := b.Wait(context.Background())

	assert.Equal(t, PhaseFailed, aState.Phase)
	assert.Equal(t, PhaseSucceeded, bState.Phase)
	assert.Equal(t, "b ok", bState.Result.Value)
}

func TestWaitHonorsContext(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	release := make(chan struct{})
	defer close(release)
	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	state := c.Wait(ctx)
	assert.Equal(t, PhaseRunning, state.Phase)
}

func TestResetDropsEverything(t *testing.T) {
	c := NewController[payload]("test", &fakeGuard{})

	c.Run(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "done"}, nil
	})
	c.Wait(context.Background())

	c.Reset()
	state := c.State()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Nil(t, state.Result)
	assert.Empty(t, state.Err)
}
