package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// incrementIfExists bumps hint_count only on a live session, so an expired
// session is never resurrected as a bare counter.
var incrementIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "hint_count", 1)
`)

// SessionStore keeps tutoring sessions as hashes that expire after ttl.
// Key format: tutor:session:<id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.TutoringSession) error {
	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"user_id", sess.UserID,
			"level", sess.Level,
			"hint_count", sess.HintCount,
			"created_at", sess.CreatedAt.UnixMilli(),
		)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.TutoringSession, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	hints, err := strconv.Atoi(fields["hint_count"])
	if err != nil {
		return nil, fmt.Errorf("get session: bad hint_count: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("get session: bad created_at: %w", err)
	}
	return &domain.TutoringSession{
		ID:        id,
		UserID:    fields["user_id"],
		Level:     fields["level"],
		HintCount: hints,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}

func (s *SessionStore) IncrementHints(ctx context.Context, id string) (int, error) {
	n, err := incrementIfExists.Run(ctx, s.client, []string{s.key(id)}).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrSessionNotFound
		}
		return 0, fmt.Errorf("increment hints: %w", err)
	}
	if n < 0 {
		return 0, domain.ErrSessionNotFound
	}
	return n, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(id string) string {
	return keyPrefix + "session:" + id
}
