package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already registered")
	ErrRateLimited        = errors.New("too many failed login attempts, try again later")

	// ErrConversationNotFound is returned both when a conversation does not exist
	// and when it belongs to another user.
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSessionNotFound      = errors.New("tutoring session not found")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
