package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/jobfit/internal/adapter/ai"
	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
	"github.com/fairyhunter13/jobfit/internal/service/refine"
	"github.com/fairyhunter13/jobfit/internal/usecase"
)

// Services are the use cases shared by the HTTP server and the CLI.
type Services struct {
	Fit    usecase.FitService
	Ingest usecase.IngestService
	// AI is nil when refinement is disabled.
	AI domain.AIClient
}

// BuildServices loads the scoring file and wires the scoring engine, the
// optional AI refiner and the normalizer. store may be nil.
func BuildServices(ctx context.Context, cfg config.Config, store domain.JobStore) (Services, error) {
	sc, err := config.LoadScoringConfig(cfg.ScoringConfigPath)
	if err != nil {
		return Services{}, fmt.Errorf("op=app.BuildServices: %w", err)
	}
	engine, err := sc.Engine(cfg.WeightSet, cfg.SkillMode)
	if err != nil {
		return Services{}, fmt.Errorf("op=app.BuildServices: %w", err)
	}

	client, err := ai.New(ctx, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("op=app.BuildServices: %w", err)
	}
	refiner, err := refine.New(client, refine.WithBlendRatio(cfg.AIBlendRatio), refine.WithTimeout(cfg.AITimeout))
	if err != nil {
		return Services{}, fmt.Errorf("op=app.BuildServices: %w", err)
	}

	normalizer := normalize.New(normalize.WithThousandsThreshold(cfg.SalaryThousandsThreshold))
	fit := usecase.NewFitService(engine, refiner, normalizer.Salary(), cfg.RankConcurrency)
	ingest := usecase.NewIngestService(normalizer, store, cfg.GetRetryConfig(), cfg.StoreTimeout, cfg.IngestConcurrency)

	slog.Info("services ready",
		slog.String("weight_set", cfg.WeightSet),
		slog.String("skill_mode", string(engine.Extractor().Mode())),
		slog.Bool("ai_enabled", refiner.Enabled()),
		slog.Bool("store", store != nil))
	return Services{Fit: fit, Ingest: ingest, AI: client}, nil
}
