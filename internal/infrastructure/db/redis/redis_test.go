package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)

	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, &domain.TutoringSession{ID: "s1", UserID: "u1", Level: "1-2", CreatedAt: created}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "1-2", got.Level)
	assert.Equal(t, 0, got.HintCount)
	assert.True(t, created.Equal(got.CreatedAt))

	n, err := store.IncrementHints(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.IncrementHints(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.HintCount)

	assert.True(t, mr.TTL("tutor:session:s1") > 0, "session must expire")
	require.NoError(t, store.Ping(ctx))
}

func TestSessionStore_Missing(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.IncrementHints(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_Expired(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Minute)

	require.NoError(t, store.Create(ctx, &domain.TutoringSession{ID: "s1", UserID: "u1", Level: "1-2", CreatedAt: time.Now()}))
	mr.FastForward(2 * time.Minute)

	_, err := store.IncrementHints(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, mr.Exists("tutor:session:s1"), "increment must not recreate an expired session")
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	limiter := NewLoginLimiter(client, 3, time.Minute, 5*time.Minute)

	for i := 0; i < 2; i++ {
		blocked, err := limiter.Failure(ctx, "k")
		require.NoError(t, err)
		assert.False(t, blocked)
	}
	ok, _, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	blocked, err := limiter.Failure(ctx, "k")
	require.NoError(t, err)
	assert.True(t, blocked)

	ok, retry, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	mr.FastForward(6 * time.Minute)
	ok, _, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "block must lapse")
}

func TestLoginLimiter_WindowResetsFailures(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	limiter := NewLoginLimiter(client, 2, time.Minute, time.Hour)

	_, err := limiter.Failure(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	blocked, err := limiter.Failure(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked, "failures outside the window must not count")
}

func TestLoginLimiter_SuccessClears(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	limiter := NewLoginLimiter(client, 2, time.Minute, time.Hour)

	_, _ = limiter.Failure(ctx, "k")
	require.NoError(t, limiter.Success(ctx, "k"))

	blocked, err := limiter.Failure(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)
}
