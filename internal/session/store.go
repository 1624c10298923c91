package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Status is the top-level view state of the client.
type Status string

const (
	StatusChecking        Status = "checking"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// Store owns the bearer token for the current session. The token is
// treated as opaque: no client-side expiry decoding, only set on login
// and cleared on logout or server-reported expiry. It is persisted to a
// single fixed file so a restarted client can resume the session.
type Store struct {
	mu     sync.RWMutex
	path   string
	token  string
	status Status
}

type persistedCredential struct {
	AccessToken string `json:"access_token"`
}

// NewStore creates a store in the Checking state. Call Restore once at
// startup to resolve it.
func NewStore(path string) *Store {
	return &Store{path: path, status: StatusChecking}
}

// Restore reads the persisted credential and resolves the startup
// Checking state. It is a local file lookup, never a network call.
func (s *Store) Restore() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusChecking {
		return s.status
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.status = StatusUnauthenticated
		return s.status
	}

	var cred persistedCredential
	if err := json.Unmarshal(data, &cred); err != nil || cred.AccessToken == "" {
		log.Warn().Str("path", s.path).Msg("discarding unreadable credential file")
		s.status = StatusUnauthenticated
		return s.status
	}

	s.token = cred.AccessToken
	s.status = StatusAuthenticated
	return s.status
}

// Current returns the stored token, or empty when unauthenticated.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Status returns the current top-level state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetToken stores and persists a freshly issued token. A persistence
// failure does not fail the login: the session stays usable in memory.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.status = StatusAuthenticated

	if err := writeFileAtomic(s.path, persistedCredential{AccessToken: token}); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("persist credential failed")
	}
}

// Clear drops the token and removes the persisted file. Clearing an
// already-cleared store is a no-op, so concurrent 401s cannot race on
// teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" && s.status == StatusUnauthenticated {
		return
	}

	s.token = ""
	s.status = StatusUnauthenticated

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", s.path).Msg("remove credential file failed")
	}
}

func writeFileAtomic(path string, cred persistedCredential) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
