package domain

import (
	"context"
	"time"
)

// PlaceholderUnknown replaces a missing title or company on a canonical job.
const PlaceholderUnknown = "Unknown"

// RawRecord is a source-specific posting as delivered by a provider or scraper.
type RawRecord = map[string]any

// CanonicalJob is the source-independent job record produced by the normalizer.
// Invariants: Title and Company are never empty; URL is canonicalised or empty.
type CanonicalJob struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	SalaryMin   *int       `json:"salary_min"`
	SalaryMax   *int       `json:"salary_max"`
	SalaryText  *string    `json:"salary_text"`
	JobType     *string    `json:"job_type"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	ExternalID  *string    `json:"external_id"`
	PostedAt    *time.Time `json:"posted_at"`
	Raw         RawRecord  `json:"raw,omitempty"`
}

// Profile describes the candidate side of a scoring request. It is never persisted.
type Profile struct {
	Skills         []string `json:"skills" validate:"omitempty,dive,max=100"`
	DesiredTitle   *string  `json:"desired_title" validate:"omitempty,max=200"`
	Location       *string  `json:"location" validate:"omitempty,max=200"`
	RemoteOK       bool     `json:"remote_ok"`
	MinSalary      *float64 `json:"min_salary" validate:"omitempty,gte=0"`
	MaxSalary      *float64 `json:"max_salary" validate:"omitempty,gte=0"`
	SeniorityLevel *string  `json:"seniority_level" validate:"omitempty,max=50"`
}

// Method tells how a fit score was produced.
type Method string

const (
	MethodHeuristic  Method = "heuristic"
	MethodAIEnhanced Method = "ai_enhanced"
)

// Factor names, in the order they appear in a ScoreResult.
const (
	FactorSkills    = "skills"
	FactorTitle     = "title"
	FactorLocation  = "location"
	FactorSalary    = "salary"
	FactorSeniority = "seniority"
)

// FactorNames lists every factor in emission order.
var FactorNames = []string{FactorSkills, FactorTitle, FactorLocation, FactorSalary, FactorSeniority}

// ScoreFactor is one weighted component of a fit score. Score is in [0,1].
type ScoreFactor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// ScoreResult is returned for every scoring call.
// Invariant: FitScore is finite and within [0,100].
type ScoreResult struct {
	FitScore    float64       `json:"fit_score"`
	Factors     []ScoreFactor `json:"factors"`
	Method      Method        `json:"method"`
	AIReasoning *string       `json:"ai_reasoning,omitempty"`
}

// ScoreRequest carries one job and the candidate data it is scored against.
// Job must be a map[string]any, a CanonicalJob or a *CanonicalJob.
type ScoreRequest struct {
	Job        any      `json:"job" validate:"required"`
	ResumeText *string  `json:"resumeText" validate:"omitempty,max=200000"`
	Profile    *Profile `json:"profile"`
	// UseAI set to false skips refinement for this call; nil means allowed.
	UseAI *bool `json:"use_ai,omitempty"`
}

// AIAllowed reports whether the caller permits refinement.
func (r ScoreRequest) AIAllowed() bool { return r.UseAI == nil || *r.UseAI }

// RankRequest scores several jobs against one candidate.
type RankRequest struct {
	Jobs       []any    `json:"jobs" validate:"required,min=1,dive,required"`
	ResumeText *string  `json:"resumeText" validate:"omitempty,max=200000"`
	Profile    *Profile `json:"profile"`
	UseAI      *bool    `json:"use_ai,omitempty"`
	// Limit keeps only the best N results when positive.
	Limit int `json:"limit,omitempty" validate:"gte=0"`
}

// RankedJob is one entry of a ranking, best first. Index points into RankRequest.Jobs.
type RankedJob struct {
	Index  int         `json:"index"`
	Title  string      `json:"title"`
	Result ScoreResult `json:"result"`
}

// StoredJob is a canonical job as acknowledged by a store.
type StoredJob struct {
	ID       string `json:"id"`
	DedupKey string `json:"dedup_key"`
	Inserted bool   `json:"inserted"`
}

// Ports

// JobStore persists canonical jobs keyed by their dedup key.
// On conflict every field except the store-assigned ID and creation time is replaced.
type JobStore interface {
	Upsert(ctx Context, job CanonicalJob) (StoredJob, error)
}

// AIClient sends a single chat completion to an external language model.
type AIClient interface {
	Chat(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	Provider() string
}

// Context is an alias so ports read naturally without importing context everywhere.
type Context = context.Context
