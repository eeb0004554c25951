package app

import (
	"context"
	"fmt"

	httpserver "github.com/fairyhunter13/jobfit/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// healthReporter is implemented by AI clients that track provider health.
type healthReporter interface{ Healthy() error }

// BuildReadinessChecks returns a db check when a pool is configured and an ai
// check when refinement is enabled. A nil pool means the server runs without a store.
func BuildReadinessChecks(pool Pinger, client domain.AIClient) []httpserver.ReadinessCheck {
	var checks []httpserver.ReadinessCheck
	if pool != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "db", Check: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			return nil
		}})
	}
	if hr, ok := client.(healthReporter); ok {
		checks = append(checks, httpserver.ReadinessCheck{Name: "ai", Check: func(context.Context) error {
			return hr.Healthy()
		}})
	}
	return checks
}
