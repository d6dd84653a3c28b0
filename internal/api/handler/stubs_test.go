package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/turtlecode/tutor-api/internal/api/middleware"
	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
	"github.com/turtlecode/tutor-api/internal/core/prompts"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	loginFn     func(ctx context.Context, email, password, clientIP string) (*ports.AuthResult, error)
	authorizeFn func(token string) (string, error)
	meFn        func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.registerFn(ctx, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password, clientIP string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password, clientIP)
}

func (s *stubAuthService) Authorize(token string) (string, error) {
	return s.authorizeFn(token)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubConversationService struct {
	createFn   func(ctx context.Context, userID, title string) (*domain.Conversation, error)
	listFn     func(ctx context.Context, userID string) ([]*domain.Conversation, error)
	getFn      func(ctx context.Context, userID, id string) (*domain.ConversationWithMessages, error)
	deleteFn   func(ctx context.Context, userID, id string) error
	appendFn   func(ctx context.Context, userID, conversationID, role, content string) (*domain.Message, error)
	messagesFn func(ctx context.Context, userID, conversationID string) ([]*domain.Message, error)
}

func (s *stubConversationService) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	return s.createFn(ctx, userID, title)
}

func (s *stubConversationService) List(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	return s.listFn(ctx, userID)
}

func (s *stubConversationService) Get(ctx context.Context, userID, id string) (*domain.ConversationWithMessages, error) {
	return s.getFn(ctx, userID, id)
}

func (s *stubConversationService) Delete(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *stubConversationService) AppendMessage(ctx context.Context, userID, conversationID, role, content string) (*domain.Message, error) {
	return s.appendFn(ctx, userID, conversationID, role, content)
}

func (s *stubConversationService) Messages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	return s.messagesFn(ctx, userID, conversationID)
}

func (s *stubConversationService) AuthorizeOwnership(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	return nil, domain.ErrConversationNotFound
}

type stubGuidanceService struct {
	tipsFn     func(ctx context.Context, userID, level string) (*ports.TipsResult, error)
	guidanceFn func(ctx context.Context, in ports.GuidanceInput) (*ports.GuidanceResult, error)
	completeFn func(ctx context.Context, in ports.CompleteInput) (*domain.CompletionRecord, error)
	levels     []prompts.Level
}

func (s *stubGuidanceService) Tips(ctx context.Context, userID, level string) (*ports.TipsResult, error) {
	return s.tipsFn(ctx, userID, level)
}

func (s *stubGuidanceService) Guidance(ctx context.Context, in ports.GuidanceInput) (*ports.GuidanceResult, error) {
	return s.guidanceFn(ctx, in)
}

func (s *stubGuidanceService) Complete(ctx context.Context, in ports.CompleteInput) (*domain.CompletionRecord, error) {
	return s.completeFn(ctx, in)
}

func (s *stubGuidanceService) Levels() []prompts.Level {
	return s.levels
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

// newContext builds an echo context with the validator installed. A non-empty
// userID simulates the Auth middleware having run.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.UserIDKey, userID)
	}
	return c, rec
}
