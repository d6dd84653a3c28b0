package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
	"github.com/turtlecode/tutor-api/internal/core/prompts"
)

// defaultProviderMessage is shown when a provider failure carries no message of its own.
const defaultProviderMessage = "Failed to get AI guidance"

// GuidanceService builds level-aware prompts, tracks hints per tutoring
// session and degrades to canned text when the provider is out of quota.
type GuidanceService struct {
	catalog       *prompts.Catalog
	provider      ports.CompletionProvider
	sessions      ports.SessionStore
	conversations ports.ConversationService
	historyLimit  int
	logger        zerolog.Logger
	now           func() time.Time
}

// NewGuidanceService builds a GuidanceService. historyLimit <= 0 replays every
// prior turn; a positive value keeps only the most recent turns.
func NewGuidanceService(
	catalog *prompts.Catalog,
	provider ports.CompletionProvider,
	sessions ports.SessionStore,
	conversations ports.ConversationService,
	historyLimit int,
	logger zerolog.Logger,
) *GuidanceService {
	if catalog == nil {
		catalog = prompts.Default()
	}
	return &GuidanceService{
		catalog:       catalog,
		provider:      provider,
		sessions:      sessions,
		conversations: conversations,
		historyLimit:  historyLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// Levels returns the catalog's known levels.
func (s *GuidanceService) Levels() []prompts.Level {
	return s.catalog.Levels()
}

// Tips opens a tutoring session for level and returns its opening message.
// Provider failures never surface: the level's fallback tip is returned instead.
func (s *GuidanceService) Tips(ctx context.Context, userID, level string) (*ports.TipsResult, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return nil, domain.NewValidationError("Level required")
	}

	session, err := s.newSession(ctx, userID, level)
	if err != nil {
		return nil, err
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: prompts.TipsSystemPrompt},
		{Role: domain.RoleUser, Content: s.catalog.TipPrompt(level)},
	}
	tips, err := s.provider.Complete(ctx, messages, prompts.TipsParams)
	if err != nil {
		s.logger.Warn().Err(err).Str("level", level).Msg("tip generation failed, using fallback")
		return &ports.TipsResult{Tips: s.catalog.FallbackTip(level), SessionID: session.ID, Degraded: true}, nil
	}
	return &ports.TipsResult{Tips: tips, SessionID: session.ID}, nil
}

// Guidance produces the tutoring reply for one turn.
func (s *GuidanceService) Guidance(ctx context.Context, in ports.GuidanceInput) (*ports.GuidanceResult, error) {
	level := strings.TrimSpace(in.Level)
	if level == "" || strings.TrimSpace(in.UserMessage) == "" {
		return nil, domain.NewValidationError("Level and message required")
	}
	if err := validateTurns(in.History); err != nil {
		return nil, err
	}

	history := in.History
	var conv *domain.Conversation
	if in.ConversationID != "" {
		c, err := s.conversations.AuthorizeOwnership(ctx, in.UserID, in.ConversationID)
		if err != nil {
			return nil, err
		}
		conv = c
		if !in.HistoryProvided {
			stored, err := s.conversations.Messages(ctx, in.UserID, conv.ID)
			if err != nil {
				return nil, err
			}
			history = toTurns(stored)
		}
	}

	session, err := s.resolveSession(ctx, in.UserID, level, in.SessionID)
	if err != nil {
		return nil, err
	}

	// The counter reflects hints requested, so it moves before the provider is called.
	hintCount := session.HintCount
	if in.IsHint {
		hintCount, err = s.sessions.IncrementHints(ctx, session.ID)
		if err != nil {
			return nil, err
		}
	}

	messages := s.buildPrompt(level, in.UserMessage, history, in.IsHint)

	if conv != nil {
		if _, err := s.conversations.AppendMessage(ctx, in.UserID, conv.ID, string(domain.RoleUser), in.UserMessage); err != nil {
			return nil, err
		}
	}

	result := &ports.GuidanceResult{SessionID: session.ID, HintCount: hintCount}
	reply, err := s.provider.Complete(ctx, messages, prompts.GuidanceParams)
	switch {
	case err == nil:
		result.Guidance = reply
	case domain.IsQuotaExceeded(err):
		s.logger.Warn().Err(err).Str("level", level).Msg("provider quota exceeded, using fallback guidance")
		result.Guidance = prompts.QuotaFallback
		result.Degraded = true
	default:
		s.logger.Error().Err(err).Str("level", level).Msg("guidance request failed")
		return nil, asProviderError(err)
	}

	if conv != nil {
		if _, err := s.conversations.AppendMessage(ctx, in.UserID, conv.ID, string(domain.RoleAssistant), result.Guidance); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Complete packages a finished attempt into an exportable record. Nothing is stored.
func (s *GuidanceService) Complete(ctx context.Context, in ports.CompleteInput) (*domain.CompletionRecord, error) {
	level := strings.TrimSpace(in.Level)
	if level == "" {
		return nil, domain.NewValidationError("Level required")
	}
	if err := validateTurns(in.Transcript); err != nil {
		return nil, err
	}

	record := &domain.CompletionRecord{
		Level:       level,
		Transcript:  in.Transcript,
		Feedback:    in.Feedback,
		CompletedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if record.Transcript == nil {
		record.Transcript = []domain.ChatMessage{}
	}
	if in.SessionID != "" {
		session, err := s.ownedSession(ctx, in.UserID, level, in.SessionID)
		if err != nil {
			return nil, err
		}
		record.SessionID = session.ID
		record.HintCount = session.HintCount
	}
	return record, nil
}

// buildPrompt lays out [system, ...history, user]. History keeps its order and
// is only trimmed when a history limit is configured.
func (s *GuidanceService) buildPrompt(level, userMessage string, history []domain.ChatMessage, isHint bool) []domain.ChatMessage {
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.catalog.GuidancePrompt(level, isHint)})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	return messages
}

func (s *GuidanceService) resolveSession(ctx context.Context, userID, level, sessionID string) (*domain.TutoringSession, error) {
	if sessionID == "" {
		return s.newSession(ctx, userID, level)
	}
	return s.ownedSession(ctx, userID, level, sessionID)
}

func (s *GuidanceService) ownedSession(ctx context.Context, userID, level, sessionID string) (*domain.TutoringSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	if session.Level != level {
		return nil, domain.NewValidationError("session belongs to a different level")
	}
	return session, nil
}

func (s *GuidanceService) newSession(ctx context.Context, userID, level string) (*domain.TutoringSession, error) {
	session := &domain.TutoringSession{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Level:     level,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("level", level).Msg("failed to create tutoring session")
		return nil, err
	}
	return session, nil
}

func validateTurns(turns []domain.ChatMessage) error {
	for _, t := range turns {
		if !t.Role.Valid() {
			return domain.NewValidationError("conversation turns must have role user or assistant")
		}
	}
	return nil
}

func toTurns(msgs []*domain.Message) []domain.ChatMessage {
	turns := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return turns
}

// asProviderError guarantees a *domain.ProviderError with a user-facing message.
func asProviderError(err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		if pe.Message == "" {
			return &domain.ProviderError{Kind: domain.ProviderOther, Message: defaultProviderMessage, Err: pe.Err}
		}
		return pe
	}
	return &domain.ProviderError{Kind: domain.ProviderOther, Message: defaultProviderMessage, Err: err}
}
