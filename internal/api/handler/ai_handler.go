package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/turtlecode/tutor-api/internal/api/metrics"
	"github.com/turtlecode/tutor-api/internal/core/ports"
)

type AIHandler struct {
	guidance ports.GuidanceService
}

func NewAIHandler(guidance ports.GuidanceService) *AIHandler {
	return &AIHandler{guidance: guidance}
}

// Tips starts a tutoring session for a level and returns its opening tips.
//
// @Summary      Level tips
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Param        level  path      string  true  "Level ID"  example(1-2)
// @Success      200    {object}  tipsResponse
// @Failure      401    {object}  errorResponse
// @Router       /ai/tips/{level} [post]
func (h *AIHandler) Tips(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.guidance.Tips(c.Request().Context(), userID, c.Param("level"))
	if err != nil {
		return err
	}

	outcome := "ok"
	if res.Degraded {
		outcome = "fallback"
	}
	metrics.TipsRequestsTotal.WithLabelValues(outcome).Inc()

	return c.JSON(http.StatusOK, tipsResponse{Tips: res.Tips, SessionID: res.SessionID})
}

// Guidance answers one tutoring turn.
//
// @Summary      Tutoring guidance
// @Description  Returns level-aware guidance. When the provider is out of quota a canned reply is returned with 200.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      guidanceRequest  true  "Tutoring turn"
// @Success      200   {object}  guidanceResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /ai/guidance [post]
func (h *AIHandler) Guidance(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req guidanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.guidance.Guidance(c.Request().Context(), ports.GuidanceInput{
		UserID:          userID,
		Level:           req.Level,
		UserMessage:     req.UserMessage,
		History:         toTurns(req.ConversationHistory),
		HistoryProvided: req.ConversationHistory != nil,
		IsHint:          req.IsHint,
		SessionID:       req.SessionID,
		ConversationID:  req.ConversationID,
	})
	if err != nil {
		metrics.GuidanceRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	outcome := "ok"
	if res.Degraded {
		outcome = "degraded"
	}
	metrics.GuidanceRequestsTotal.WithLabelValues(outcome).Inc()
	if req.IsHint {
		metrics.HintsRequestedTotal.Inc()
	}

	return c.JSON(http.StatusOK, guidanceResponse{
		Guidance:  res.Guidance,
		SessionID: res.SessionID,
		HintCount: res.HintCount,
	})
}

// Complete builds a downloadable record of a finished level attempt.
//
// @Summary      Export completion record
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      completeRequest  true  "Transcript and feedback"
// @Success      200   {object}  domain.CompletionRecord
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /ai/complete [post]
func (h *AIHandler) Complete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req completeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	record, err := h.guidance.Complete(c.Request().Context(), ports.CompleteInput{
		UserID:     userID,
		Level:      req.Level,
		SessionID:  req.SessionID,
		Transcript: toTurns(req.Transcript),
		Feedback:   req.Feedback,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="level-%s-completion.json"`, safeFilePart(record.Level)))
	return c.JSON(http.StatusOK, record)
}

// Levels lists the levels the tutor has dedicated prompts for.
//
// @Summary      List levels
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   levelResponse
// @Router       /ai/levels [get]
func (h *AIHandler) Levels(c echo.Context) error {
	return c.JSON(http.StatusOK, toLevelList(h.guidance.Levels()))
}

// safeFilePart keeps only characters that are safe inside a quoted filename.
func safeFilePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}
