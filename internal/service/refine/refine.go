// Package refine blends a language-model opinion into a heuristic fit score.
//
// A refinement never changes the shape of the result: every failure is
// reported through Outcome and the caller keeps the heuristic score.
package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/scoring"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

// Prompt and reply limits.
const (
	SystemPrompt       = "You are a job matching expert."
	MaxTokens          = 200
	ReasoningLimit     = 500
	DescriptionExcerpt = 500
	ResumeExcerpt      = 1000
)

// DefaultBlendRatio is the share of the model score in the final fit score.
const DefaultBlendRatio = 0.6

// DefaultTimeout bounds one model call.
const DefaultTimeout = 30 * time.Second

// Failure names why a refinement fell back to the heuristic result.
type Failure string

const (
	FailureNone        Failure = ""
	FailureDisabled    Failure = "disabled"
	FailureTimeout     Failure = "timeout"
	FailureRateLimited Failure = "rate_limited"
	FailureTransport   Failure = "transport"
	FailureUnparsable  Failure = "unparsable"
)

// Outcome is the result of one refinement. When Failure is set, Result is the
// untouched heuristic result and Err carries the cause.
type Outcome struct {
	Result  domain.ScoreResult
	Failure Failure
	Err     error
}

// OK reports whether the model score was blended in.
func (o Outcome) OK() bool { return o.Failure == FailureNone }

// Input is the job and candidate text shown to the model.
type Input struct {
	Title       string
	Company     string
	Location    string
	Description string
	Resume      string
}

// Refiner calls an AIClient and blends its score with the heuristic one.
type Refiner struct {
	client  domain.AIClient
	ratio   float64
	timeout time.Duration
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithBlendRatio overrides DefaultBlendRatio.
func WithBlendRatio(ratio float64) Option { return func(r *Refiner) { r.ratio = ratio } }

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option { return func(r *Refiner) { r.timeout = d } }

// New builds a Refiner. A nil client yields a disabled Refiner and the
// options are not checked.
func New(client domain.AIClient, opts ...Option) (*Refiner, error) {
	r := &Refiner{client: client, ratio: DefaultBlendRatio, timeout: DefaultTimeout}
	if client == nil {
		return r, nil
	}
	for _, o := range opts {
		o(r)
	}
	if r.ratio < 0 || r.ratio > 1 {
		return nil, fmt.Errorf("%w: blend ratio %v must be in [0,1]", domain.ErrInvalidArgument, r.ratio)
	}
	if r.timeout <= 0 {
		return nil, fmt.Errorf("%w: refine timeout must be positive", domain.ErrInvalidArgument)
	}
	return r, nil
}

// Enabled reports whether a model client is configured.
func (r *Refiner) Enabled() bool { return r != nil && r.client != nil }

// Applies reports whether a request with this résumé text should be refined.
func (r *Refiner) Applies(resume string) bool {
	return r.Enabled() && strings.TrimSpace(resume) != ""
}

// Refine asks the model for a score and blends it with heuristic. It makes a
// single attempt bounded by the configured timeout.
func (r *Refiner) Refine(ctx context.Context, in Input, heuristic domain.ScoreResult) Outcome {
	if !r.Applies(in.Resume) {
		return Outcome{Result: heuristic, Failure: FailureDisabled}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.client.Chat(callCtx, SystemPrompt, BuildPrompt(in, heuristic), MaxTokens)
	if err != nil {
		return Outcome{Result: heuristic, Failure: classify(callCtx, err), Err: err}
	}
	aiScore, ok := ParseScore(reply)
	if !ok {
		return Outcome{
			Result:  heuristic,
			Failure: FailureUnparsable,
			Err:     fmt.Errorf("no score in %s reply: %q", r.client.Provider(), textx.Truncate(reply, 80)),
		}
	}

	out := heuristic
	out.Factors = append([]domain.ScoreFactor(nil), heuristic.Factors...)
	out.FitScore = Blend(aiScore, heuristic.FitScore, r.ratio)
	out.Method = domain.MethodAIEnhanced
	reasoning := textx.Truncate(strings.TrimSpace(reply), ReasoningLimit)
	out.AIReasoning = &reasoning

	slog.Debug("fit score refined",
		slog.String("provider", r.client.Provider()),
		slog.Float64("heuristic", heuristic.FitScore),
		slog.Float64("ai", aiScore),
		slog.Float64("final", out.FitScore))
	return Outcome{Result: out}
}

func classify(ctx context.Context, err error) Failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, domain.ErrUpstreamTimeout):
		return FailureTimeout
	case errors.Is(err, domain.ErrUpstreamRateLimit), errors.Is(err, domain.ErrRateLimited):
		return FailureRateLimited
	default:
		return FailureTransport
	}
}

var scorePattern = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseScore returns the first number in reply, clamped to [0,100].
func ParseScore(reply string) (float64, bool) {
	m := scorePattern.FindString(reply)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return scoring.ClampFit(v), true
}

// Blend mixes the model and heuristic scores and rounds to two decimals.
func Blend(aiScore, heuristic, ratio float64) float64 {
	return scoring.ClampFit(scoring.Round2(ratio*aiScore + (1-ratio)*heuristic))
}

// BuildPrompt renders the user prompt for one job.
func BuildPrompt(in Input, heuristic domain.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Given this job and resume, refine the job fit score (currently %.2f/100).\n\n", heuristic.FitScore)
	fmt.Fprintf(&b, "Job Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Company: %s\n", in.Company)
	fmt.Fprintf(&b, "Location: %s\n", in.Location)
	fmt.Fprintf(&b, "Description: %s\n\n", textx.Head(in.Description, DescriptionExcerpt))
	fmt.Fprintf(&b, "Resume: %s\n\n", textx.Head(in.Resume, ResumeExcerpt))
	b.WriteString("Heuristic Factors:\n")
	for _, f := range heuristic.Factors {
		fmt.Fprintf(&b, "- %s: score %.2f, weight %.2f\n", f.Name, f.Score, f.Weight)
	}
	b.WriteString("\nReply with the refined score (0-100) first, then a brief justification. Be realistic and honest.")
	return b.String()
}
