package scoring

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

// JobView is the part of a posting the scorers read.
type JobView struct {
	Title       string
	Company     string
	Location    string
	Description string
	SalaryMin   *int
	SalaryMax   *int
	// Skills declared by the source, merged with those extracted from the text.
	Skills []string
	// Seniority declared by the source; inferred from Title when empty.
	Seniority string
}

// Candidate is the résumé and profile data a job is scored against.
type Candidate struct {
	ResumeText     string
	Skills         []string
	DesiredTitle   string
	Location       string
	RemoteOK       bool
	MinSalary      *float64
	MaxSalary      *float64
	SeniorityLevel string
}

// Engine runs skill extraction, the factor scorers and aggregation.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	extractor *textx.SkillExtractor
	weights   Weights
}

// NewEngine validates weights before accepting them.
func NewEngine(extractor *textx.SkillExtractor, weights Weights) (*Engine, error) {
	if extractor == nil {
		return nil, fmt.Errorf("%w: skill extractor is required", domain.ErrInvalidArgument)
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Engine{extractor: extractor, weights: weights}, nil
}

// Weights returns the weight set in use.
func (e *Engine) Weights() Weights { return e.weights }

// Extractor returns the skill extractor in use.
func (e *Engine) Extractor() *textx.SkillExtractor { return e.extractor }

// Factors computes the five factor scores without weighting them.
func (e *Engine) Factors(job JobView, cand Candidate) Scores {
	title := knownOrEmpty(job.Title)

	jobSkills := e.extractor.Extract(title + " " + job.Description)
	for s := range e.extractor.Normalize(job.Skills) {
		jobSkills[s] = struct{}{}
	}
	candSkills := e.extractor.Normalize(cand.Skills)
	for s := range e.extractor.Extract(cand.ResumeText) {
		candSkills[s] = struct{}{}
	}

	desired := cand.DesiredTitle
	if strings.TrimSpace(desired) == "" {
		desired = cand.ResumeText
	}

	jobLevel := job.Seniority
	if strings.TrimSpace(jobLevel) == "" {
		jobLevel = title
	}

	return Scores{
		Skills:    SkillsScore(candSkills, jobSkills),
		Title:     TitleScore(desired, title),
		Location:  LocationScore(job.Location, cand.Location, cand.RemoteOK),
		Salary:    SalaryScore(job.SalaryMin, job.SalaryMax, cand.MinSalary, cand.MaxSalary),
		Seniority: SeniorityScore(jobLevel, cand.SeniorityLevel),
	}
}

// Score returns the heuristic ScoreResult for one job.
func (e *Engine) Score(job JobView, cand Candidate) domain.ScoreResult {
	return Aggregate(e.Factors(job, cand), e.weights)
}

// knownOrEmpty treats the normalizer's placeholder as missing.
func knownOrEmpty(s string) string {
	if strings.TrimSpace(s) == domain.PlaceholderUnknown {
		return ""
	}
	return s
}
