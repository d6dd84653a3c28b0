package memory

import (
	"context"
	"sync"
	"time"
)

type loginEntry struct {
	failures     int
	windowStart  time.Time
	blockedUntil time.Time
}

// LoginLimiter is the in-process counterpart of the Redis limiter.
type LoginLimiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	block       time.Duration
	entries     map[string]*loginEntry
	now         func() time.Time
}

func NewLoginLimiter(maxFailures int, window, block time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxFailures: maxFailures,
		window:      window,
		block:       block,
		entries:     make(map[string]*loginEntry),
		now:         time.Now,
	}
}

func (l *LoginLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return true, 0, nil
	}
	now := l.now()
	if now.Before(e.blockedUntil) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

func (l *LoginLimiter) Failure(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		e = &loginEntry{windowStart: now}
		l.entries[key] = e
	}
	e.failures++
	if e.failures < l.maxFailures {
		return false, nil
	}
	e.failures = 0
	e.windowStart = now
	e.blockedUntil = now.Add(l.block)
	return true, nil
}

func (l *LoginLimiter) Success(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
