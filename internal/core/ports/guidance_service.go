package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/prompts"
)

// TipsResult is the opening message for a level attempt.
type TipsResult struct {
	Tips      string
	SessionID string
	// Degraded is true when the canned fallback replaced a provider reply.
	Degraded bool
}

// GuidanceInput carries one tutoring turn.
type GuidanceInput struct {
	UserID      string
	Level       string
	UserMessage string
	History     []domain.ChatMessage
	// HistoryProvided distinguishes an explicit empty history from an omitted one.
	HistoryProvided bool
	IsHint          bool
	SessionID       string
	ConversationID  string
}

// GuidanceResult is the tutoring reply for one turn.
type GuidanceResult struct {
	Guidance  string
	SessionID string
	HintCount int
	Degraded  bool
}

// CompleteInput carries the learner's final transcript and feedback.
type CompleteInput struct {
	UserID     string
	Level      string
	SessionID  string
	Transcript []domain.ChatMessage
	Feedback   string
}

// GuidanceService orchestrates level-aware tutoring replies.
type GuidanceService interface {
	Tips(ctx context.Context, userID, level string) (*TipsResult, error)
	Guidance(ctx context.Context, in GuidanceInput) (*GuidanceResult, error)
	Complete(ctx context.Context, in CompleteInput) (*domain.CompletionRecord, error)
	Levels() []prompts.Level
}
