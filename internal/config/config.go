// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv       string        `env:"APP_ENV" envDefault:"dev"`
	Port         int           `env:"PORT" envDefault:"8080"`
	// DBURL is optional; empty runs without a job store.
	DBURL        string        `env:"DB_URL"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// AI refinement is used only when FeatureAIFit is on and the selected provider has a key.
	FeatureAIFit  bool          `env:"FEATURE_AI_FIT" envDefault:"false"`
	AIProvider    string        `env:"AI_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	AIBlendRatio  float64       `env:"AI_BLEND_RATIO" envDefault:"0.6"`
	AIRatePerSec  float64       `env:"AI_RATE_PER_SEC" envDefault:"2"`
	AIRateBurst   int           `env:"AI_RATE_BURST" envDefault:"4"`
	// AIBreakerThreshold consecutive failures open the provider circuit for AIBreakerCooldown.
	AIBreakerThreshold int           `env:"AI_BREAKER_THRESHOLD" envDefault:"5"`
	AIBreakerCooldown  time.Duration `env:"AI_BREAKER_COOLDOWN" envDefault:"30s"`

	SalaryThousandsThreshold int    `env:"SALARY_THOUSANDS_THRESHOLD" envDefault:"1000"`
	WeightSet                string `env:"WEIGHT_SET" envDefault:"default"`
	// SkillMode overrides the mode in the scoring file when set.
	SkillMode         string `env:"SKILL_MODE"`
	ScoringConfigPath string `env:"SCORING_CONFIG_PATH"`

	RankConcurrency   int `env:"RANK_CONCURRENCY" envDefault:"8"`
	IngestConcurrency int `env:"INGEST_CONCURRENCY" envDefault:"4"`
	MaxBatchSize      int `env:"MAX_BATCH_SIZE" envDefault:"500"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"jobfit"`
	// OTELSampleRatio of 0 samples everything outside prod and 10% in prod.
	OTELSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	MaxBodyMB             int64         `env:"MAX_BODY_MB" envDefault:"5"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	HTTPRequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"45s"`

	// Retry Configuration for store writes during ingestion
	RetryMaxRetries   int           `env:"RETRY_MAX_RETRIES" envDefault:"3"`
	RetryInitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" envDefault:"200ms"`
	RetryMaxDelay     time.Duration `env:"RETRY_MAX_DELAY" envDefault:"5s"`
	RetryMultiplier   float64       `env:"RETRY_MULTIPLIER" envDefault:"2.0"`
	RetryJitter       bool          `env:"RETRY_JITTER" envDefault:"true"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.AIProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.AIProvider)
	}
	if c.AIBlendRatio < 0 || c.AIBlendRatio > 1 {
		return fmt.Errorf("AI_BLEND_RATIO must be in [0,1], got %v", c.AIBlendRatio)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.SalaryThousandsThreshold < 0 {
		return fmt.Errorf("SALARY_THOUSANDS_THRESHOLD must not be negative")
	}
	return nil
}

// AIEnabled reports whether AI refinement is switched on and has a credential.
func (c Config) AIEnabled() bool {
	if !c.FeatureAIFit {
		return false
	}
	switch c.AIProvider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
