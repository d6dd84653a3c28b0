package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/turtlecode/tutor-api/internal/core/ports"
)

// ConversationHandler serves /api/conversations and /api/messages. Every
// lookup is scoped to the authenticated user; someone else's conversation is
// reported exactly like a missing one.
type ConversationHandler struct {
	conversations ports.ConversationService
}

func NewConversationHandler(conversations ports.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Create starts a new conversation.
//
// @Summary      Create conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createConversationRequest  false  "Optional title"
// @Success      201   {object}  conversationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /conversations [post]
func (h *ConversationHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	conv, err := h.conversations.Create(c.Request().Context(), userID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toConversationResponse(conv))
}

// List returns the caller's conversations, most recently updated first.
//
// @Summary      List conversations
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   conversationResponse
// @Failure      401  {object}  errorResponse
// @Router       /conversations [get]
func (h *ConversationHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	convs, err := h.conversations.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toConversationList(convs))
}

// Get returns one conversation with its messages.
//
// @Summary      Get conversation
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  conversationDetailResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /conversations/{id} [get]
func (h *ConversationHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conv, err := h.conversations.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversationDetailResponse{
		conversationResponse: toConversationResponse(&conv.Conversation),
		Messages:             toMessageList(conv.Messages),
	})
}

// Delete removes a conversation and all of its messages.
//
// @Summary      Delete conversation
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /conversations/{id} [delete]
func (h *ConversationHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.conversations.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Conversation deleted"})
}

// AppendMessage adds a message to a conversation.
//
// @Summary      Add message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        conversationId  path      string                true  "Conversation ID"
// @Param        body            body      appendMessageRequest  true  "Role and content"
// @Success      201             {object}  chatMessageResponse
// @Failure      400             {object}  errorResponse
// @Failure      401             {object}  errorResponse
// @Failure      404             {object}  errorResponse
// @Router       /messages/{conversationId} [post]
func (h *ConversationHandler) AppendMessage(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req appendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.conversations.AppendMessage(c.Request().Context(), userID, c.Param("conversationId"), req.Role, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// Messages lists a conversation's messages oldest first.
//
// @Summary      List messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        conversationId  path      string  true  "Conversation ID"
// @Success      200             {array}   chatMessageResponse
// @Failure      401             {object}  errorResponse
// @Failure      404             {object}  errorResponse
// @Router       /messages/{conversationId} [get]
func (h *ConversationHandler) Messages(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	msgs, err := h.conversations.Messages(c.Request().Context(), userID, c.Param("conversationId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMessageList(msgs))
}
