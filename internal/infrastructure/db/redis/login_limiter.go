package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per key inside a window and blocks the
// key once maxFailures is reached.
// Key format: tutor:login:fail:<key>, tutor:login:block:<key>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
	block       time.Duration
}

func NewLoginLimiter(client *redis.Client, maxFailures int, window, block time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxFailures: maxFailures, window: window, block: block}
}

func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := l.client.PTTL(ctx, l.blockKey(key)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("login limiter: %w", err)
	}
	// go-redis reports a missing key as -2 and a key without expiry as -1.
	switch {
	case ttl > 0:
		return false, ttl, nil
	case ttl == -1:
		return false, l.block, nil
	default:
		return true, 0, nil
	}
}

func (l *LoginLimiter) Failure(ctx context.Context, key string) (bool, error) {
	failKey := l.failKey(key)

	n, err := l.client.Incr(ctx, failKey).Result()
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, failKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("login limiter: %w", err)
		}
	}
	if n < int64(l.maxFailures) {
		return false, nil
	}

	_, err = l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, l.blockKey(key), "1", l.block)
		p.Del(ctx, failKey)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return true, nil
}

func (l *LoginLimiter) Success(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.failKey(key), l.blockKey(key)).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

func (l *LoginLimiter) failKey(key string) string {
	return keyPrefix + "login:fail:" + key
}

func (l *LoginLimiter) blockKey(key string) string {
	return keyPrefix + "login:block:" + key
}
