package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

type providerFunc func() (string, error)

func (f providerFunc) Complete(context.Context, []domain.ChatMessage, domain.ModelParams) (string, error) {
	return f()
}

func TestInstrumentProvider_CountsFailuresByKind(t *testing.T) {
	quotaBefore := testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("quota_exceeded"))
	otherBefore := testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("other"))

	quota := InstrumentProvider(providerFunc(func() (string, error) {
		return "", &domain.ProviderError{Kind: domain.ProviderQuotaExceeded}
	}))
	other := InstrumentProvider(providerFunc(func() (string, error) {
		return "", context.DeadlineExceeded
	}))
	ok := InstrumentProvider(providerFunc(func() (string, error) { return "fine", nil }))

	if _, err := quota.Complete(context.Background(), nil, domain.ModelParams{}); err == nil {
		t.Fatalf("expected error to pass through")
	}
	_, _ = other.Complete(context.Background(), nil, domain.ModelParams{})
	text, err := ok.Complete(context.Background(), nil, domain.ModelParams{})
	if err != nil || text != "fine" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}

	if got := testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("quota_exceeded")) - quotaBefore; got != 1 {
		t.Fatalf("expected 1 quota failure, got %v", got)
	}
	if got := testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("other")) - otherBefore; got != 1 {
		t.Fatalf("expected 1 other failure, got %v", got)
	}
}
