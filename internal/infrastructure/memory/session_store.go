// Package memory keeps tutoring sessions and login counters in process memory
// for single-instance deployments without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

type sessionEntry struct {
	session   domain.TutoringSession
	expiresAt time.Time
}

// SessionStore is a mutex-guarded map with lazy expiry.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*sessionEntry
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: make(map[string]*sessionEntry), now: time.Now}
}

func (s *SessionStore) Create(_ context.Context, sess *domain.TutoringSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	e := &sessionEntry{session: *sess}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.sessions[sess.ID] = e
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.TutoringSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess := e.session
	return &sess, nil
}

func (s *SessionStore) IncrementHints(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	e.session.HintCount++
	return e.session.HintCount, nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }

// live returns the entry if present and unexpired. Callers hold mu.
func (s *SessionStore) live(id string) (*sessionEntry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}

// sweep drops expired entries. Callers hold mu.
func (s *SessionStore) sweep() {
	now := s.now()
	for id, e := range s.sessions {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
