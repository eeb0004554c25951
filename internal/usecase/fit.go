// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
	obsctx "github.com/fairyhunter13/jobfit/internal/observability"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
	"github.com/fairyhunter13/jobfit/internal/service/refine"
	"github.com/fairyhunter13/jobfit/internal/service/scoring"
)

// DefaultRankConcurrency bounds parallel scoring in Rank.
const DefaultRankConcurrency = 8

// FitService scores jobs against a candidate.
type FitService struct {
	Engine      *scoring.Engine
	Refiner     *refine.Refiner
	Salary      normalize.SalaryParser
	Concurrency int
}

// NewFitService constructs a FitService. refiner may be nil to disable AI refinement.
func NewFitService(engine *scoring.Engine, refiner *refine.Refiner, salary normalize.SalaryParser, concurrency int) FitService {
	if concurrency <= 0 {
		concurrency = DefaultRankConcurrency
	}
	return FitService{Engine: engine, Refiner: refiner, Salary: salary, Concurrency: concurrency}
}

// Score runs the pipeline for one job. The only error is a malformed request;
// AI failures fall back to the heuristic result.
func (s FitService) Score(ctx domain.Context, req domain.ScoreRequest) (domain.ScoreResult, error) {
	job, err := parseJob(req.Job, s.Salary)
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("op=fit.Score: %w", err)
	}
	return s.score(ctx, job, candidateOf(req.ResumeText, req.Profile), req.AIAllowed()), nil
}

func (s FitService) score(ctx context.Context, job parsedJob, cand scoring.Candidate, allowAI bool) domain.ScoreResult {
	result := s.Engine.Score(job.view, cand)
	for _, f := range result.Factors {
		observability.ObserveFactor(f.Name, f.Score)
	}

	if allowAI && s.Refiner.Applies(cand.ResumeText) {
		in := job.input
		in.Resume = cand.ResumeText
		out := s.Refiner.Refine(ctx, in, result)
		if !out.OK() {
			obsctx.LoggerFromContext(ctx).Warn("ai refinement failed, keeping heuristic score",
				slog.String("failure", string(out.Failure)),
				slog.String("title", job.view.Title),
				slog.Any("error", out.Err))
			observability.RefineFallback(string(out.Failure))
		} else {
			result = out.Result
		}
	}

	observability.ObserveFitScore(string(result.Method), result.FitScore)
	return result
}

// Rank scores every job against the same candidate and returns them best
// first. Ties keep input order. Any malformed job rejects the whole request.
func (s FitService) Rank(ctx domain.Context, req domain.RankRequest) ([]domain.RankedJob, error) {
	if len(req.Jobs) == 0 {
		return []domain.RankedJob{}, nil
	}
	jobs := make([]parsedJob, len(req.Jobs))
	for i, raw := range req.Jobs {
		j, err := parseJob(raw, s.Salary)
		if err != nil {
			return nil, fmt.Errorf("op=fit.Rank: jobs[%d]: %w", i, err)
		}
		jobs[i] = j
	}

	cand := candidateOf(req.ResumeText, req.Profile)
	allowAI := req.UseAI == nil || *req.UseAI
	ranked := make([]domain.RankedJob, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i := range jobs {
		g.Go(func() error {
			ranked[i] = domain.RankedJob{
				Index:  i,
				Title:  jobs[i].view.Title,
				Result: s.score(gctx, jobs[i], cand, allowAI),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("op=fit.Rank: %w", err)
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Result.FitScore > ranked[b].Result.FitScore
	})
	if req.Limit > 0 && req.Limit < len(ranked) {
		ranked = ranked[:req.Limit]
	}
	return ranked, nil
}
