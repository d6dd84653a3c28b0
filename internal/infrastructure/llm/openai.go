// Package llm adapts hosted language models to the completion provider port.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.3-70b-versatile"

	quotaErrorCode = "insufficient_quota"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIError struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Code    json.RawMessage `json:"code"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

// OpenAIClient calls /chat/completions on Groq or any OpenAI-compatible API.
// It never retries: a failed call is classified and returned.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewOpenAIClient(cfg OpenAIConfig, logger zerolog.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.ChatMessage, params domain.ModelParams) (string, error) {
	if c.apiKey == "" {
		return "", &domain.ProviderError{Kind: domain.ProviderOther, Message: "groq_key environment variable not set"}
	}

	reqBody := openAIRequest{
		Model:       c.model,
		Messages:    make([]openAIMessage, 0, len(messages)),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderOther, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderOther, Err: fmt.Errorf("read completion response: %w", err)}
	}

	var out openAIResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK || out.Error != nil {
		pe := classifyOpenAIError(resp.StatusCode, out.Error)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("kind", string(pe.Kind)).
			Str("provider_message", pe.Message).
			Msg("completion request failed")
		return "", pe
	}
	if decodeErr != nil {
		return "", &domain.ProviderError{Kind: domain.ProviderOther, Err: fmt.Errorf("decode completion response: %w", decodeErr)}
	}
	if len(out.Choices) == 0 {
		return "", &domain.ProviderError{Kind: domain.ProviderOther, Err: errors.New("no completion returned")}
	}

	c.logger.Debug().Dur("latency", time.Since(start)).Str("model", c.model).Msg("completion received")
	return out.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps an error response to a ProviderError. Exhausted quota
// and HTTP 429 are QuotaExceeded; everything else is Other.
func classifyOpenAIError(status int, apiErr *openAIError) *domain.ProviderError {
	pe := &domain.ProviderError{Kind: domain.ProviderOther}
	var code string
	if apiErr != nil {
		pe.Message = apiErr.Message
		code = strings.Trim(string(apiErr.Code), `"`)
	}
	if code == quotaErrorCode || status == http.StatusTooManyRequests {
		pe.Kind = domain.ProviderQuotaExceeded
	}
	pe.Err = fmt.Errorf("status %d", status)
	return pe
}
