package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// ConversationRepository implements ports.ConversationRepository.
type ConversationRepository struct {
	s *Storage
}

func NewConversationRepository(s *Storage) *ConversationRepository {
	return &ConversationRepository{s: s}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	const query = `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.s.db.ExecContext(ctx, query, c.ID, c.OwnerID, c.Title, toMillis(c.CreatedAt), toMillis(c.UpdatedAt)); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) FindByOwner(ctx context.Context, id, ownerID string) (*domain.Conversation, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`
	c, err := scanConversation(r.s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

// Delete removes the conversation; messages go with it through ON DELETE CASCADE.
func (r *ConversationRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.s.db.ExecContext(ctx, query, m.ID, m.ConversationID, string(m.Role), m.Content, toMillis(m.CreatedAt)); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE conversations SET updated_at = MAX(updated_at, ?) WHERE id = ?`
	res, err := r.s.db.ExecContext(ctx, query, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	const query = `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Message, 0)
	for rows.Next() {
		var (
			m         domain.Message
			role      string
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func (r *ConversationRepository) Ping(ctx context.Context) error {
	return r.s.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var (
		c                    domain.Conversation
		createdAt, updatedAt int64
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}
