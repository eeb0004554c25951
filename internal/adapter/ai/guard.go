// Package ai wires language-model providers behind domain.AIClient.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

// ErrCircuitOpen is returned while the provider circuit is open.
var ErrCircuitOpen = errors.New("ai provider circuit open")

// Guard wraps a provider with a token-bucket limiter, a circuit breaker,
// metrics and reply cleanup.
type Guard struct {
	next    domain.AIClient
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// NewGuard wraps next. A nil limiter or breaker disables that protection.
func NewGuard(next domain.AIClient, limiter *rate.Limiter, breaker *CircuitBreaker) *Guard {
	return &Guard{next: next, limiter: limiter, breaker: breaker}
}

// Provider returns the wrapped provider name.
func (g *Guard) Provider() string { return g.next.Provider() }

// Chat waits for a limiter token within ctx, then calls the provider once.
func (g *Guard) Chat(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	provider := g.next.Provider()
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			observability.ObserveAIRequest(provider, "rate_limited", 0)
			// a token that cannot arrive before the deadline is a rate limit, not a provider failure
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}
	}
	if g.breaker != nil && !g.breaker.Allow() {
		observability.ObserveAIRequest(provider, "circuit_open", 0)
		return "", ErrCircuitOpen
	}

	start := time.Now()
	reply, err := g.next.Chat(ctx, systemPrompt, userPrompt, maxTokens)
	dur := time.Since(start)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, context.Canceled):
			outcome = "canceled"
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrUpstreamTimeout):
			outcome = "timeout"
		case errors.Is(err, domain.ErrUpstreamRateLimit):
			outcome = "rate_limited"
		}
		if g.breaker != nil {
			if outcome == "canceled" {
				g.breaker.Release()
			} else {
				g.breaker.RecordFailure()
			}
		}
		observability.ObserveAIRequest(provider, outcome, dur)
		slog.Warn("ai provider call failed",
			slog.String("provider", provider),
			slog.String("outcome", outcome),
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return "", err
	}
	if g.breaker != nil {
		g.breaker.RecordSuccess()
	}
	observability.ObserveAIRequest(provider, "ok", dur)
	return CleanReply(reply), nil
}

// Healthy reports ErrCircuitOpen unless the breaker is closed.
func (g *Guard) Healthy() error {
	if g.breaker == nil {
		return nil
	}
	if st := g.breaker.State(); st != CircuitClosed {
		return fmt.Errorf("%w: %s is %s", ErrCircuitOpen, g.next.Provider(), st)
	}
	return nil
}
