package ports

import (
	"context"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// CompletionProvider turns a role-tagged prompt into generated text.
// Failures are reported as *domain.ProviderError.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, params domain.ModelParams) (string, error)
}
