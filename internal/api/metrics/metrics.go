// Package metrics defines and registers the custom Prometheus metrics of the
// tutoring API. It is the single source of truth for metric names, labels and
// help strings. All collectors register with the default registry on import.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtlecode/tutor-api/internal/core/domain"
	"github.com/turtlecode/tutor-api/internal/core/ports"
)

const namespace = "tutor"

// ── Guidance metrics ──────────────────────────────────────────────────────────

// GuidanceRequestsTotal counts guidance turns.
// Label:
//   - outcome: "ok", "degraded" (quota fallback) or "error"
var GuidanceRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guidance_requests_total",
		Help:      "Total number of guidance turns, by outcome.",
	},
	[]string{"outcome"},
)

// HintsRequestedTotal counts hint-flagged guidance turns.
var HintsRequestedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hints_requested_total",
		Help:      "Total number of hint requests.",
	},
)

// TipsRequestsTotal counts opening-tip requests.
// Label:
//   - outcome: "ok" or "fallback"
var TipsRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tips_requests_total",
		Help:      "Total number of tip requests, by outcome.",
	},
	[]string{"outcome"},
)

// ── Provider metrics ──────────────────────────────────────────────────────────

// ProviderFailuresTotal counts completion-provider failures.
// Label:
//   - kind: "quota_exceeded" or "other"
var ProviderFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_failures_total",
		Help:      "Total number of completion provider failures, by kind.",
	},
	[]string{"kind"},
)

// ProviderRequestDuration measures completion-provider latency.
// Label:
//   - outcome: "ok" or "error"
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of completion provider calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"outcome"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginFailuresTotal counts rejected logins.
// Label:
//   - reason: "invalid_credentials" or "locked"
var LoginFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Total number of rejected login attempts, by reason.",
	},
	[]string{"reason"},
)

// instrumentedProvider records latency and failure kinds around a provider.
type instrumentedProvider struct {
	next ports.CompletionProvider
}

// InstrumentProvider wraps p so every call is observed.
func InstrumentProvider(p ports.CompletionProvider) ports.CompletionProvider {
	return &instrumentedProvider{next: p}
}

func (p *instrumentedProvider) Complete(ctx context.Context, messages []domain.ChatMessage, params domain.ModelParams) (string, error) {
	start := time.Now()
	text, err := p.next.Complete(ctx, messages, params)
	if err != nil {
		ProviderRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		kind := domain.ProviderOther
		if domain.IsQuotaExceeded(err) {
			kind = domain.ProviderQuotaExceeded
		}
		ProviderFailuresTotal.WithLabelValues(string(kind)).Inc()
		return "", err
	}
	ProviderRequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return text, nil
}
