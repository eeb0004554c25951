package config

import (
	"time"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

// GetRetryConfig returns the store retry policy. Test mode uses short delays.
func (c Config) GetRetryConfig() domain.RetryConfig {
	if c.IsTest() {
		return domain.RetryConfig{
			MaxRetries:   c.RetryMaxRetries,
			InitialDelay: time.Millisecond,
			MaxDelay:     10 * time.Millisecond,
			Multiplier:   2.0,
		}
	}
	return domain.RetryConfig{
		MaxRetries:   c.RetryMaxRetries,
		InitialDelay: c.RetryInitialDelay,
		MaxDelay:     c.RetryMaxDelay,
		Multiplier:   c.RetryMultiplier,
		Jitter:       c.RetryJitter,
	}
}
