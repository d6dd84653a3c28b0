package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

type ConversationRepository struct {
	db            *mongo.Database
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{
		db:            db,
		conversations: db.Collection(conversationsCollection),
		messages:      db.Collection(messagesCollection),
	}
}

type conversationDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Title     string `bson:"title"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

type messageDoc struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	Role           string `bson:"role"`
	Content        string `bson:"content"`
	CreatedAt      int64  `bson:"created_at"`
}

func (d conversationDoc) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:        d.ID,
		OwnerID:   d.UserID,
		Title:     d.Title,
		CreatedAt: msToTime(d.CreatedAt),
		UpdatedAt: msToTime(d.UpdatedAt),
	}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	doc := conversationDoc{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
	if _, err := r.conversations.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) FindByOwner(ctx context.Context, id, ownerID string) (*domain.Conversation, error) {
	var doc conversationDoc
	if err := r.conversations.FindOne(ctx, bson.M{"_id": id, "user_id": ownerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.conversations.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []conversationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	out := make([]*domain.Conversation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Delete removes messages first, so a failure part-way never leaves messages
// pointing at a missing conversation.
func (r *ConversationRepository) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := r.FindByOwner(ctx, id, ownerID); err != nil {
		return err
	}
	if _, err := r.messages.DeleteMany(ctx, bson.M{"conversation_id": id}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := r.conversations.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
	doc := messageDoc{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
	if _, err := r.messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$max": bson.M{"updated_at": at.UnixMilli()}},
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]*domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Message{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			Role:           domain.Role(d.Role),
			Content:        d.Content,
			CreatedAt:      msToTime(d.CreatedAt),
		})
	}
	return out, nil
}

func (r *ConversationRepository) Ping(ctx context.Context) error {
	return Ping(ctx, r.db)
}
