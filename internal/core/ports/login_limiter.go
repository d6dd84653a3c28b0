package ports

import (
	"context"
	"time"
)

// LoginLimiter locks out repeated failed logins for an (email, client) pair.
type LoginLimiter interface {
	// Allow reports whether a login attempt may proceed and, if not, for how long it is blocked.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	// Failure records a failed attempt and reports whether the key is now blocked.
	Failure(ctx context.Context, key string) (bool, error)
	// Success clears the failure counter.
	Success(ctx context.Context, key string) error
}
