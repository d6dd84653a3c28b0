package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// ConversationService is the owner-checked conversation store. Every method
// verifies that userID owns the target conversation before touching storage.
type ConversationService interface {
	Create(ctx context.Context, userID, title string) (*domain.Conversation, error)
	List(ctx context.Context, userID string) ([]*domain.Conversation, error)
	Get(ctx context.Context, userID, id string) (*domain.ConversationWithMessages, error)
	Delete(ctx context.Context, userID, id string) error
	AppendMessage(ctx context.Context, userID, conversationID, role, content string) (*domain.Message, error)
	Messages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error)
	// AuthorizeOwnership returns the conversation if userID owns it.
	AuthorizeOwnership(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)
}
