package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// AuthRepository persists user credentials.
type AuthRepository interface {
	// Create stores a new user. Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	// FindByEmail returns domain.ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no user has that id.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
