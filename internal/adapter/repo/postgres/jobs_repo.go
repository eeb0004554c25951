// Package postgres persists canonical jobs in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/dedup"
)

//go:embed schema.sql
var schemaSQL string

// PgxPool is a minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JobRepo upserts canonical jobs keyed by their dedup key.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

// EnsureSchema creates the jobs table and its indexes when missing.
func (r *JobRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("op=job.ensure_schema: %w", classify(err))
	}
	return nil
}

const upsertSQL = `
INSERT INTO jobs (id, dedup_key, title, company, location, description, salary_min, salary_max,
                  salary_text, job_type, url, source, external_id, posted_at, raw, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16)
ON CONFLICT (dedup_key) DO UPDATE SET
    title = EXCLUDED.title,
    company = EXCLUDED.company,
    location = EXCLUDED.location,
    description = EXCLUDED.description,
    salary_min = EXCLUDED.salary_min,
    salary_max = EXCLUDED.salary_max,
    salary_text = EXCLUDED.salary_text,
    job_type = EXCLUDED.job_type,
    url = EXCLUDED.url,
    source = EXCLUDED.source,
    external_id = EXCLUDED.external_id,
    posted_at = EXCLUDED.posted_at,
    raw = EXCLUDED.raw,
    updated_at = EXCLUDED.updated_at
RETURNING id, (xmax = 0) AS inserted`

// Upsert implements domain.JobStore. A conflicting row keeps its id and created_at.
func (r *JobRepo) Upsert(ctx domain.Context, j domain.CanonicalJob) (stored domain.StoredJob, err error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Upsert")
	defer span.End()

	start := time.Now()
	defer func() { observability.ObserveStoreOp("postgres", "upsert", err, time.Since(start)) }()

	key := dedup.Key(j)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("job.source", j.Source),
	)

	var raw []byte
	if j.Raw != nil {
		if raw, err = json.Marshal(j.Raw); err != nil {
			return domain.StoredJob{}, fmt.Errorf("op=job.upsert: %w: raw record: %v", domain.ErrInvalidArgument, err)
		}
	}

	var id uuid.UUID
	var inserted bool
	row := r.Pool.QueryRow(ctx, upsertSQL,
		uuid.New(), key, j.Title, j.Company, j.Location, j.Description, j.SalaryMin, j.SalaryMax,
		j.SalaryText, j.JobType, j.URL, j.Source, j.ExternalID, j.PostedAt, raw, time.Now().UTC())
	if err = row.Scan(&id, &inserted); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return domain.StoredJob{}, fmt.Errorf("op=job.upsert: %w", classify(err))
	}
	return domain.StoredJob{ID: id.String(), DedupKey: key, Inserted: inserted}, nil
}

// classify maps driver errors onto the domain taxonomy so callers can decide on retries.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "23": // integrity constraint violation
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
		case "22": // data exception
			return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, pgErr.Message)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
