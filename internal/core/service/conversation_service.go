package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
)

// ConversationService guards every conversation and message operation with an
// ownership check against the requesting user.
type ConversationService struct {
	repo   ports.ConversationRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewConversationService(repo ports.ConversationRepository, logger zerolog.Logger) *ConversationService {
	return &ConversationService{repo: repo, logger: logger, now: time.Now}
}

func (s *ConversationService) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultConversationTitle
	}

	now := s.timestamp()
	c := &domain.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create conversation")
		return nil, err
	}
	return c, nil
}

func (s *ConversationService) List(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByOwner(ctx, userID)
}

func (s *ConversationService) Get(ctx context.Context, userID, id string) (*domain.ConversationWithMessages, error) {
	c, err := s.AuthorizeOwnership(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ConversationWithMessages{Conversation: *c, Messages: msgs}, nil
}

func (s *ConversationService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.AuthorizeOwnership(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info().Str("conversation_id", id).Str("user_id", userID).Msg("conversation deleted")
	return nil
}

// AppendMessage stores a message and then advances the conversation's
// updatedAt. The two writes are sequential; the ownership check precedes both.
func (s *ConversationService) AppendMessage(ctx context.Context, userID, conversationID, role, content string) (*domain.Message, error) {
	if strings.TrimSpace(role) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("Role and content required")
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	c, err := s.AuthorizeOwnership(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.appendMessage(ctx, c, r, content)
}

func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	c, err := s.AuthorizeOwnership(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, c.ID)
}

// AuthorizeOwnership returns the conversation when userID owns it. Missing and
// foreign conversations both yield domain.ErrConversationNotFound.
func (s *ConversationService) AuthorizeOwnership(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if conversationID == "" {
		return nil, domain.ErrConversationNotFound
	}
	return s.repo.FindByOwner(ctx, conversationID, userID)
}

func (s *ConversationService) appendMessage(ctx context.Context, c *domain.Conversation, role domain.Role, content string) (*domain.Message, error) {
	now := s.timestamp()
	m := &domain.Message{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: c.ID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	if err := s.repo.AppendMessage(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", c.ID).Msg("failed to append message")
		return nil, err
	}

	// updatedAt must strictly increase even when two appends share a millisecond.
	updated := now
	if !updated.After(c.UpdatedAt) {
		updated = c.UpdatedAt.Add(time.Millisecond)
	}
	if err := s.repo.Touch(ctx, c.ID, updated); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", c.ID).Msg("failed to touch conversation")
		return nil, err
	}
	c.UpdatedAt = updated
	return m, nil
}

func (s *ConversationService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
