package session

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Coordinator reacts to session boundaries. It owns the generation
// counter that in-flight operations capture at invocation time: any
// result resolving under a stale generation belongs to a session that
// no longer exists and must be discarded, never applied. This is the
// cancellation-by-disinterest policy; no request is cancelled
// server-side.
type Coordinator struct {
	store *Store
	gen   atomic.Uint64

	mu       sync.Mutex
	onExpiry []func()
}

// NewCoordinator wires a coordinator to the store it tears down.
func NewCoordinator(store *Store) *Coordinator {
	return &Coordinator{store: store}
}

// OnExpiry registers a callback invoked (synchronously, in registration
// order) whenever the session ends through a server-reported expiry.
func (c *Coordinator) OnExpiry(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpiry = append(c.onExpiry, fn)
}

// Snapshot returns the current generation. Capture it before starting
// work and check it with Valid when the work resolves.
func (c *Coordinator) Snapshot() uint64 {
	return c.gen.Load()
}

// Valid reports whether a captured generation still belongs to the
// current session.
func (c *Coordinator) Valid(gen uint64) bool {
	return c.gen.Load() == gen
}

// LoggedIn starts a fresh session generation after a successful login.
func (c *Coordinator) LoggedIn() {
	c.gen.Add(1)
}

// LoggedOut ends the session on explicit user logout: credential gone,
// every in-flight operation abandoned.
func (c *Coordinator) LoggedOut() {
	c.store.Clear()
	c.gen.Add(1)
}

// SessionExpired handles a server-reported 401 from anywhere in the
// system. Clearing is idempotent, so overlapping expiries from
// concurrent requests collapse into one teardown.
func (c *Coordinator) SessionExpired() {
	log.Info().Msg("session expired, tearing down")
	c.store.Clear()
	c.gen.Add(1)

	c.mu.Lock()
	callbacks := make([]func(), len(c.onExpiry))
	copy(callbacks, c.onExpiry)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
