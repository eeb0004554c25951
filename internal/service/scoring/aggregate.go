package scoring

import (
	"math"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

// Scores holds one value in [0,1] per factor.
type Scores struct {
	Skills    float64
	Title     float64
	Location  float64
	Salary    float64
	Seniority float64
}

func (s Scores) of(factor string) float64 {
	switch factor {
	case domain.FactorSkills:
		return s.Skills
	case domain.FactorTitle:
		return s.Title
	case domain.FactorLocation:
		return s.Location
	case domain.FactorSalary:
		return s.Salary
	case domain.FactorSeniority:
		return s.Seniority
	}
	return 0
}

// Aggregate combines factor scores into a heuristic ScoreResult. Every factor
// is always included; fit_score is the weighted sum scaled to [0,100] and
// rounded to two decimals.
func Aggregate(s Scores, w Weights) domain.ScoreResult {
	factors := make([]domain.ScoreFactor, 0, len(domain.FactorNames))
	total := 0.0
	for _, name := range domain.FactorNames {
		score := clamp01(s.of(name))
		weight := w.Of(name)
		total += score * weight
		factors = append(factors, domain.ScoreFactor{Name: name, Score: score, Weight: weight})
	}
	return domain.ScoreResult{
		FitScore: ClampFit(Round2(total * 100)),
		Factors:  factors,
		Method:   domain.MethodHeuristic,
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// ClampFit bounds a fit score to [0,100]; NaN becomes 0.
func ClampFit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
