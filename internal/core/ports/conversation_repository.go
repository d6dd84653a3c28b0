package ports

import (
	"context"
	"time"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// ConversationRepository persists conversations and their messages.
//
// Every lookup that takes an ownerID filters on it, so a conversation owned by
// someone else is indistinguishable from a missing one
// (domain.ErrConversationNotFound in both cases).
type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	FindByOwner(ctx context.Context, id, ownerID string) (*domain.Conversation, error)
	// ListByOwner returns the owner's conversations, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Conversation, error)
	// Delete removes the conversation and all of its messages.
	Delete(ctx context.Context, id, ownerID string) error

	AppendMessage(ctx context.Context, m *domain.Message) error
	// Touch advances updated_at; it never moves it backwards.
	Touch(ctx context.Context, id string, at time.Time) error
	// ListMessages returns messages ascending by creation time, ties by id.
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)

	Ping(ctx context.Context) error
}
