package scoring

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

// DefaultWeightSet names the built-in weight set.
const DefaultWeightSet = "default"

const weightSumTolerance = 1e-6

// Weights assigns each factor its share of the fit score.
type Weights struct {
	Skills    float64 `yaml:"skills" json:"skills"`
	Title     float64 `yaml:"title" json:"title"`
	Location  float64 `yaml:"location" json:"location"`
	Salary    float64 `yaml:"salary" json:"salary"`
	Seniority float64 `yaml:"seniority" json:"seniority"`
}

// DefaultWeights returns the built-in weight set.
func DefaultWeights() Weights {
	return Weights{Skills: 0.35, Title: 0.25, Location: 0.15, Salary: 0.15, Seniority: 0.10}
}

// Of returns the weight for a factor name, or 0 for an unknown name.
func (w Weights) Of(factor string) float64 {
	switch factor {
	case domain.FactorSkills:
		return w.Skills
	case domain.FactorTitle:
		return w.Title
	case domain.FactorLocation:
		return w.Location
	case domain.FactorSalary:
		return w.Salary
	case domain.FactorSeniority:
		return w.Seniority
	}
	return 0
}

// Validate requires every weight in (0,1] and a total of 1.
func (w Weights) Validate() error {
	sum := 0.0
	for _, name := range domain.FactorNames {
		v := w.Of(name)
		if math.IsNaN(v) || v <= 0 || v > 1 {
			return fmt.Errorf("%w: weight %s=%v must be in (0,1]", domain.ErrInvalidArgument, name, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, want 1", domain.ErrInvalidArgument, sum)
	}
	return nil
}

// WeightSets is a catalogue of named weight sets.
type WeightSets map[string]Weights

// Get returns the named set, falling back to DefaultWeights for the default name.
func (s WeightSets) Get(name string) (Weights, error) {
	if name == "" {
		name = DefaultWeightSet
	}
	if w, ok := s[name]; ok {
		return w, nil
	}
	if name == DefaultWeightSet {
		return DefaultWeights(), nil
	}
	return Weights{}, fmt.Errorf("%w: unknown weight set %q", domain.ErrInvalidArgument, name)
}

// Validate checks every set in the catalogue.
func (s WeightSets) Validate() error {
	for name, w := range s {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("weight set %q: %w", name, err)
		}
	}
	return nil
}
