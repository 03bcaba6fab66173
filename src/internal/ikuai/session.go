package ikuai

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

// SessionTTL is how long a session key is reused before logging in again.
// The router's own session lifetime is never queried.
const SessionTTL = 2 * time.Hour

// Authenticator performs a login and returns a fresh session key.
type Authenticator interface {
	Login(ctx context.Context) (string, error)
}

// SessionState is a read-only view of the session for status reporting.
type SessionState struct {
	HasKey   bool      `json:"has_key"`
	Expiry   time.Time `json:"expiry"`
	Rejected bool      `json:"rejected"`
	Logins   int64     `json:"logins"`
}

// SessionManager caches the router session key.
//
// Once the router refuses the credentials, the manager stays rejected and
// performs no further I/O until Reset is called.
type SessionManager struct {
	auth Authenticator
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	key      string
	expiry   time.Time
	rejected bool
	logins   int64
}

type SessionOption func(*SessionManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionManager) {
		s.now = now
	}
}

// WithTTL overrides SessionTTL.
func WithTTL(ttl time.Duration) SessionOption {
	return func(s *SessionManager) {
		s.ttl = ttl
	}
}

// NewSessionManager creates a session manager that logs in through auth.
func NewSessionManager(auth Authenticator, opts ...SessionOption) *SessionManager {
	s := &SessionManager{
		auth: auth,
		ttl:  SessionTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionKey returns a valid session key, logging in if the cached one expired.
// Concurrent callers share a single login.
func (s *SessionManager) SessionKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.rejected {
		s.mu.RUnlock()
		return "", errors.ErrAuthRejected
	}
	if s.key != "" && s.now().Before(s.expiry) {
		key := s.key
		s.mu.RUnlock()
		return key, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check in case another goroutine already logged in
	if s.rejected {
		return "", errors.ErrAuthRejected
	}
	if s.key != "" && s.now().Before(s.expiry) {
		return s.key, nil
	}

	key, err := s.auth.Login(ctx)
	if err != nil {
		if stderrors.Is(err, errors.ErrAuthRejected) {
			s.rejected = true
			log.Errorf("Router rejected the username or password; polling is suspended until the configuration is fixed")
		}
		return "", err
	}

	s.key = key
	s.expiry = s.now().Add(s.ttl)
	s.logins++
	log.Debugf("Session key refreshed, valid until %s", s.expiry.Format(time.RFC3339))

	return key, nil
}

// Invalidate forces a login on the next SessionKey call.
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry = time.Time{}
}

// Reset clears the rejected flag and the cached key, e.g. after reconfiguration.
func (s *SessionManager) Reset(auth Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if auth != nil {
		s.auth = auth
	}
	s.key = ""
	s.expiry = time.Time{}
	s.rejected = false
}

// Rejected reports whether the credentials were permanently rejected.
func (s *SessionManager) Rejected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rejected
}

// State returns a snapshot of the session for status reporting.
func (s *SessionManager) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{
		HasKey:   s.key != "" && s.now().Before(s.expiry),
		Expiry:   s.expiry,
		Rejected: s.rejected,
		Logins:   s.logins,
	}
}
