package handler

import (
	"time"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
	"github.com/turtlecode/tutor-api/internal/core/prompts"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error" example:"Conversation not found"`
}

type messageResponse struct {
	Message string `json:"message" example:"Conversation deleted"`
}

// ── Auth ──────────────────────────────────────────────────────────────────────

// credentialsRequest is shared by register and login. Presence is checked by
// the service so the client sees "Email and password required".
type credentialsRequest struct {
	Email    string `json:"email" validate:"max=254" example:"student@example.com"`
	Password string `json:"password" validate:"max=72" example:"pw123456"`
}

type authResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
	Email  string `json:"email"`
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{UserID: r.User.ID, Token: r.Token, Email: r.User.Email}
}

// ── Conversations ─────────────────────────────────────────────────────────────

type createConversationRequest struct {
	Title string `json:"title" validate:"max=200" example:"Maze practice"`
}

type conversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type conversationDetailResponse struct {
	conversationResponse
	Messages []chatMessageResponse `json:"messages"`
}

type chatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role" example:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type appendMessageRequest struct {
	Role    string `json:"role" validate:"max=16" example:"user"`
	Content string `json:"content" validate:"max=20000"`
}

func toConversationResponse(c *domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toConversationList(cs []*domain.Conversation) []conversationResponse {
	out := make([]conversationResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toConversationResponse(c))
	}
	return out
}

func toMessageResponse(m *domain.Message) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageList(ms []*domain.Message) []chatMessageResponse {
	out := make([]chatMessageResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ── AI ────────────────────────────────────────────────────────────────────────

type turn struct {
	Role    string `json:"role" validate:"oneof=user assistant" example:"assistant"`
	Content string `json:"content" validate:"max=20000"`
}

type tipsResponse struct {
	Tips      string `json:"tips"`
	SessionID string `json:"sessionId"`
}

type guidanceRequest struct {
	Level       string `json:"level" validate:"max=32" example:"1-2"`
	UserMessage string `json:"userMessage" validate:"max=20000"`
	// ConversationHistory distinguishes null/absent (nil) from an explicit [].
	ConversationHistory []turn `json:"conversationHistory" validate:"omitempty,max=200,dive"`
	IsHint              bool   `json:"isHint"`
	SessionID           string `json:"sessionId,omitempty" validate:"max=64"`
	ConversationID      string `json:"conversationId,omitempty" validate:"max=64"`
}

type guidanceResponse struct {
	Guidance  string `json:"guidance"`
	SessionID string `json:"sessionId"`
	HintCount int    `json:"hintCount"`
}

type completeRequest struct {
	Level      string `json:"level" validate:"max=32" example:"1-2"`
	SessionID  string `json:"sessionId,omitempty" validate:"max=64"`
	Transcript []turn `json:"transcript" validate:"max=500,dive"`
	Feedback   string `json:"feedback" validate:"max=5000"`
}

type levelResponse struct {
	ID          string `json:"id" example:"1-2"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

func toTurns(in []turn) []domain.ChatMessage {
	if in == nil {
		return nil
	}
	out := make([]domain.ChatMessage, 0, len(in))
	for _, t := range in {
		out = append(out, domain.ChatMessage{Role: domain.Role(t.Role), Content: t.Content})
	}
	return out
}

func toLevelList(levels []prompts.Level) []levelResponse {
	out := make([]levelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, levelResponse{ID: l.ID, Title: l.Title, Description: l.Description, Difficulty: l.Difficulty})
	}
	return out
}
