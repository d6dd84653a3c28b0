package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users map[string]*domain.User // keyed by email
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.Email]; exists {
		return domain.ErrUserExists
	}
	r.users[user.Email] = cloneUser(user)
	return nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubLimiter struct {
	max      int
	failures map[string]int
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{max: max, failures: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.failures[key] >= l.max {
		return false, time.Minute, nil
	}
	return true, 0, nil
}

func (l *stubLimiter) Failure(_ context.Context, key string) (bool, error) {
	l.failures[key]++
	return l.failures[key] >= l.max, nil
}

func (l *stubLimiter) Success(_ context.Context, key string) error {
	delete(l.failures, key)
	return nil
}

type stubConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	messages      map[string][]*domain.Message
	appendErr     error
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]*domain.Message),
	}
}

func (r *stubConversationRepo) Create(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.conversations[c.ID] = &clone
	return nil
}

// FindByOwner mirrors the real stores: a foreign conversation is not found.
func (r *stubConversationRepo) FindByOwner(_ context.Context, id, ownerID string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrConversationNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubConversationRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Conversation
	for _, c := range r.conversations {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *stubConversationRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrConversationNotFound
	}
	delete(r.conversations, id)
	delete(r.messages, id)
	return nil
}

func (r *stubConversationRepo) AppendMessage(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	clone := *m
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &clone)
	return nil
}

func (r *stubConversationRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
	}
	return nil
}

func (r *stubConversationRepo) ListMessages(_ context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Message, 0, len(r.messages[conversationID]))
	for _, m := range r.messages[conversationID] {
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubConversationRepo) Ping(context.Context) error { return nil }

type stubSessionStore struct {
	sessions     map[string]*domain.TutoringSession
	incrementErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.TutoringSession)}
}

func (s *stubSessionStore) Create(_ context.Context, sess *domain.TutoringSession) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.TutoringSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) IncrementHints(_ context.Context, id string) (int, error) {
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	sess.HintCount++
	return sess.HintCount, nil
}

func (s *stubSessionStore) Ping(context.Context) error { return nil }

// stubProvider records every prompt and answers with completeFn.
type stubProvider struct {
	calls      [][]domain.ChatMessage
	params     []domain.ModelParams
	completeFn func(messages []domain.ChatMessage) (string, error)
}

func (p *stubProvider) Complete(_ context.Context, messages []domain.ChatMessage, params domain.ModelParams) (string, error) {
	p.calls = append(p.calls, messages)
	p.params = append(p.params, params)
	if p.completeFn == nil {
		return "ok", nil
	}
	return p.completeFn(messages)
}

func replyWith(text string) func([]domain.ChatMessage) (string, error) {
	return func([]domain.ChatMessage) (string, error) { return text, nil }
}

func failWith(err error) func([]domain.ChatMessage) (string, error) {
	return func([]domain.ChatMessage) (string, error) { return "", err }
}
