package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem only appears in prompts sent to a completion provider and is
	// never stored on a Message.
	RoleSystem Role = "system"
)

// DefaultConversationTitle is used when a conversation is created without a title.
const DefaultConversationTitle = "New Chat"

// Valid reports whether r may be persisted on a Message.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts raw input into a persistable Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", NewValidationError("role must be one of: user, assistant")
	}
	return r, nil
}

// Conversation is a private, owner-scoped thread of messages.
type Conversation struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is an immutable turn inside a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// ConversationWithMessages is a conversation plus its messages in append order.
type ConversationWithMessages struct {
	Conversation
	Messages []*Message
}
