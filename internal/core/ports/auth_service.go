package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService registers users, logs them in and validates identity tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	// Login never reveals whether the email exists: both an unknown email and a
	// wrong password yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password, clientIP string) (*AuthResult, error)
	// Authorize validates a token and returns the user id it was issued for.
	Authorize(token string) (string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
