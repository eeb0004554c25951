package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/jobfit/internal/service/scoring"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

//go:embed scoring.yaml
var defaultScoringYAML []byte

// ScoringConfig is the data-driven part of scoring: weight sets and the skill vocabulary.
type ScoringConfig struct {
	SkillMode       string             `yaml:"skill_mode"`
	WeightSets      scoring.WeightSets `yaml:"weight_sets"`
	SkillVocabulary []string           `yaml:"skill_vocabulary"`
}

// DefaultScoringConfig returns the embedded scoring configuration.
func DefaultScoringConfig() (ScoringConfig, error) {
	return parseScoringConfig(defaultScoringYAML, "embedded scoring.yaml")
}

// LoadScoringConfig reads a scoring file, or the embedded default when path is empty.
func LoadScoringConfig(path string) (ScoringConfig, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultScoringConfig()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("op=config.LoadScoringConfig: %w", err)
	}
	// #nosec G304 -- path comes from operator configuration
	content, err := os.ReadFile(absPath)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("op=config.LoadScoringConfig: %w", err)
	}
	return parseScoringConfig(content, absPath)
}

func parseScoringConfig(content []byte, name string) (ScoringConfig, error) {
	var sc ScoringConfig
	if err := yaml.Unmarshal(content, &sc); err != nil {
		return ScoringConfig{}, fmt.Errorf("op=config.parseScoringConfig: parse %s: %w", name, err)
	}
	if sc.SkillMode == "" {
		sc.SkillMode = string(textx.SkillModeGeneric)
	}
	if err := sc.WeightSets.Validate(); err != nil {
		return ScoringConfig{}, fmt.Errorf("op=config.parseScoringConfig: %s: %w", name, err)
	}
	return sc, nil
}

// Engine builds the scoring engine for the named weight set. modeOverride,
// when non-empty, replaces the file's skill mode.
func (sc ScoringConfig) Engine(weightSet, modeOverride string) (*scoring.Engine, error) {
	weights, err := sc.WeightSets.Get(weightSet)
	if err != nil {
		return nil, fmt.Errorf("op=config.Engine: %w", err)
	}
	mode := sc.SkillMode
	if modeOverride != "" {
		mode = modeOverride
	}
	extractor, err := textx.NewSkillExtractor(textx.SkillMode(strings.ToLower(mode)), sc.SkillVocabulary)
	if err != nil {
		return nil, fmt.Errorf("op=config.Engine: %w", err)
	}
	return scoring.NewEngine(extractor, weights)
}
