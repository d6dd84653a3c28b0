package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// SessionStore keeps tutoring sessions and their hint counters.
type SessionStore interface {
	Create(ctx context.Context, s *domain.TutoringSession) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*domain.TutoringSession, error)
	// IncrementHints adds one to the counter and returns the new value.
	IncrementHints(ctx context.Context, id string) (int, error)
	Ping(ctx context.Context) error
}
