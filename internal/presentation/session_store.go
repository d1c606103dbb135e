package presentation

import (
	"context"
	"sync"
	"time"
)

// ViewModelFactory builds a fresh view-model for a new session.
type ViewModelFactory func() *BookingsViewModel

type session struct {
	vm       *BookingsViewModel
	lastSeen time.Time
}

// SessionStore holds one bookings view-model per user. Sessions the user has
// not touched for the idle TTL are dropped by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  ViewModelFactory
	idleTTL  time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty SessionStore. Sessions never expire until
// WithIdleTTL is set.
func NewSessionStore(factory ViewModelFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

// WithIdleTTL sets how long an untouched session is kept. Zero disables expiry.
func (s *SessionStore) WithIdleTTL(ttl time.Duration) *SessionStore {
	s.idleTTL = ttl
	return s
}

// WithClock replaces the clock used for idle tracking.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// Get returns the user's view-model, creating it on first use. It counts as
// activity on the session.
func (s *SessionStore) Get(userID string) *BookingsViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{vm: s.factory()}
		s.sessions[userID] = sess
	}
	sess.lastSeen = s.now()
	return sess.vm
}

// Lookup returns the user's view-model if a session exists. It does not
// extend the session.
func (s *SessionStore) Lookup(userID string) (*BookingsViewModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	return sess.vm, true
}

// MarkStale flags the user's screen as outdated. It returns false when the
// user has no open session.
func (s *SessionStore) MarkStale(userID string) bool {
	vm, ok := s.Lookup(userID)
	if !ok {
		return false
	}
	vm.MarkStale()
	return true
}

// Forget drops the user's session.
func (s *SessionStore) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were dropped.
func (s *SessionStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for userID, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, userID)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done. onSweep, if set, receives the
// number of sessions dropped by each sweep that dropped any.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration, onSweep func(dropped int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
