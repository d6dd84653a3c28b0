package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestAuthRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewAuthRepository(mt.DB)

		err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"})
		require.NoError(mt, err)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewAuthRepository(mt.DB)

		err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})
}

func TestAuthRepository_FindByEmail(t *testing.T) {
	mt := newMockT(t)
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "email", Value: "a@example.com"},
			{Key: "password_hash", Value: "h"},
			{Key: "created_at", Value: created.UnixMilli()},
			{Key: "updated_at", Value: created.UnixMilli()},
		}))
		repo := NewAuthRepository(mt.DB)

		u, err := repo.FindByEmail(context.Background(), "a@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.ID)
		assert.Equal(mt, "h", u.PasswordHash)
		assert.True(mt, created.Equal(u.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.users", mtest.FirstBatch))
		repo := NewAuthRepository(mt.DB)

		_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestConversationRepository_FindByOwner_ForeignIsNotFound(t *testing.T) {
	mt := newMockT(t)

	mt.Run("foreign", func(mt *mtest.T) {
		// The owner filter is part of the query, so a foreign id yields no document.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.conversations", mtest.FirstBatch))
		repo := NewConversationRepository(mt.DB)

		_, err := repo.FindByOwner(context.Background(), "c1", "u2")
		assert.ErrorIs(mt, err, domain.ErrConversationNotFound)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		filter := started.Command.Lookup("filter").Document()
		assert.Equal(mt, "u2", filter.Lookup("user_id").StringValue())
	})
}

func TestConversationRepository_ListByOwner(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes in server order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.conversations", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c2"}, {Key: "user_id", Value: "u1"}, {Key: "title", Value: "b"}, {Key: "created_at", Value: int64(2000)}, {Key: "updated_at", Value: int64(3000)}},
			bson.D{{Key: "_id", Value: "c1"}, {Key: "user_id", Value: "u1"}, {Key: "title", Value: "a"}, {Key: "created_at", Value: int64(1000)}, {Key: "updated_at", Value: int64(1000)}},
		))
		repo := NewConversationRepository(mt.DB)

		list, err := repo.ListByOwner(context.Background(), "u1")
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "c2", list[0].ID)
		assert.Equal(mt, "u1", list[1].OwnerID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		sort := started.Command.Lookup("sort").Document()
		assert.Equal(mt, int64(-1), sort.Lookup("updated_at").AsInt64())
	})
}

func TestConversationRepository_Touch(t *testing.T) {
	mt := newMockT(t)

	mt.Run("matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := NewConversationRepository(mt.DB)

		require.NoError(mt, repo.Touch(context.Background(), "c1", time.UnixMilli(5000)))
	})

	mt.Run("missing conversation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewConversationRepository(mt.DB)

		assert.ErrorIs(mt, repo.Touch(context.Background(), "missing", time.Now()), domain.ErrConversationNotFound)
	})
}

func TestConversationRepository_ListMessages(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes messages", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.messages", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "m1"}, {Key: "conversation_id", Value: "c1"}, {Key: "role", Value: "user"}, {Key: "content", Value: "hi"}, {Key: "created_at", Value: int64(1000)}},
			bson.D{{Key: "_id", Value: "m2"}, {Key: "conversation_id", Value: "c1"}, {Key: "role", Value: "assistant"}, {Key: "content", Value: "hello"}, {Key: "created_at", Value: int64(2000)}},
		))
		repo := NewConversationRepository(mt.DB)

		msgs, err := repo.ListMessages(context.Background(), "c1")
		require.NoError(mt, err)
		require.Len(mt, msgs, 2)
		assert.Equal(mt, domain.RoleUser, msgs[0].Role)
		assert.Equal(mt, domain.RoleAssistant, msgs[1].Role)
		assert.Equal(mt, int64(2000), msgs[1].CreatedAt.UnixMilli())
	})
}

func TestConversationRepository_Delete(t *testing.T) {
	mt := newMockT(t)

	mt.Run("removes messages then conversation", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "tutor.conversations", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "c1"}, {Key: "user_id", Value: "u1"}, {Key: "title", Value: "t"}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		repo := NewConversationRepository(mt.DB)

		require.NoError(mt, repo.Delete(context.Background(), "c1", "u1"))

		_ = mt.GetStartedEvent() // find
		first := mt.GetStartedEvent()
		second := mt.GetStartedEvent()
		require.NotNil(mt, first)
		require.NotNil(mt, second)
		assert.Equal(mt, messagesCollection, first.Command.Lookup("delete").StringValue())
		assert.Equal(mt, conversationsCollection, second.Command.Lookup("delete").StringValue())
	})

	mt.Run("foreign conversation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tutor.conversations", mtest.FirstBatch))
		repo := NewConversationRepository(mt.DB)

		assert.ErrorIs(mt, repo.Delete(context.Background(), "c1", "u2"), domain.ErrConversationNotFound)
	})
}
