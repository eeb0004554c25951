package ai

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/fairyhunter13/jobfit/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/jobfit/internal/adapter/ai/openai"
	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

// New builds the configured provider wrapped in a Guard. It returns a nil
// client when AI refinement is disabled, which callers treat as heuristic-only.
func New(ctx context.Context, cfg config.Config) (domain.AIClient, error) {
	if !cfg.AIEnabled() {
		slog.Info("ai refinement disabled", slog.Bool("feature_ai_fit", cfg.FeatureAIFit), slog.String("provider", cfg.AIProvider))
		return nil, nil
	}

	var (
		client domain.AIClient
		err    error
	)
	switch cfg.AIProvider {
	case config.ProviderGemini:
		client, err = gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		client, err = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AITimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("op=ai.New: %w", err)
	}

	limit := rate.Inf
	if cfg.AIRatePerSec > 0 {
		limit = rate.Limit(cfg.AIRatePerSec)
	}
	burst := cfg.AIRateBurst
	if burst < 1 {
		burst = 1
	}
	slog.Info("ai refinement enabled",
		slog.String("provider", client.Provider()),
		slog.Float64("rate_per_sec", cfg.AIRatePerSec),
		slog.Int("burst", burst))
	return NewGuard(
		client,
		rate.NewLimiter(limit, burst),
		NewCircuitBreaker(client.Provider(), cfg.AIBreakerThreshold, cfg.AIBreakerCooldown),
	), nil
}
