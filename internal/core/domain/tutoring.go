package domain

import (
	"errors"
	"fmt"
	"time"
)

// ChatMessage is a role-tagged entry in a prompt sent to a completion provider.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ModelParams are the generation parameters sent alongside a prompt.
type ModelParams struct {
	Temperature float64
	MaxTokens   int
}

// TutoringSession tracks one learner's attempt at one level.
type TutoringSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Level     string    `json:"level"`
	HintCount int       `json:"hintCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompletionRecord is the exportable summary of a finished tutoring session.
// It is built on request and never stored.
type CompletionRecord struct {
	Level       string        `json:"level"`
	SessionID   string        `json:"sessionId,omitempty"`
	HintCount   int           `json:"hintCount"`
	Transcript  []ChatMessage `json:"transcript"`
	Feedback    string        `json:"feedback"`
	CompletedAt time.Time     `json:"completedAt"`
}

// ProviderErrorKind classifies completion-provider failures.
type ProviderErrorKind string

const (
	ProviderQuotaExceeded ProviderErrorKind = "quota_exceeded"
	ProviderOther         ProviderErrorKind = "other"
)

// ProviderError is returned by completion providers. Message is safe to show
// to the end user.
type ProviderError struct {
	Kind    ProviderErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion provider (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("completion provider (%s): %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a provider quota failure.
func IsQuotaExceeded(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == ProviderQuotaExceeded
}
