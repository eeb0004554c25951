// Package sqlite persists canonical jobs in a local SQLite file for the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/dedup"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id          TEXT PRIMARY KEY,
    dedup_key   TEXT NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    company     TEXT NOT NULL,
    location    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    salary_min  INTEGER,
    salary_max  INTEGER,
    salary_text TEXT,
    job_type    TEXT,
    url         TEXT NOT NULL DEFAULT '',
    source      TEXT NOT NULL,
    external_id TEXT,
    posted_at   TEXT,
    raw         TEXT,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS jobs_source_idx ON jobs (source);`

// Store implements domain.JobStore on a single-writer SQLite database.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("op=sqlite.Open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlite.Open: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlite.Open: schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Upsert implements domain.JobStore. A conflicting row keeps its id and created_at.
func (s *Store) Upsert(ctx domain.Context, j domain.CanonicalJob) (stored domain.StoredJob, err error) {
	start := time.Now()
	defer func() { observability.ObserveStoreOp("sqlite", "upsert", err, time.Since(start)) }()

	key := dedup.Key(j)
	var raw sql.NullString
	if j.Raw != nil {
		b, mErr := json.Marshal(j.Raw)
		if mErr != nil {
			return domain.StoredJob{}, fmt.Errorf("op=sqlite.upsert: %w: raw record: %v", domain.ErrInvalidArgument, mErr)
		}
		raw = sql.NullString{String: string(b), Valid: true}
	}
	var posted sql.NullString
	if j.PostedAt != nil {
		posted = sql.NullString{String: j.PostedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoredJob{}, fmt.Errorf("op=sqlite.upsert: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM jobs WHERE dedup_key = ?`, key).Scan(&id)
	inserted := errors.Is(err, sql.ErrNoRows)
	switch {
	case inserted:
		id = uuid.New().String()
		_, err = tx.ExecContext(ctx, `INSERT INTO jobs (id, dedup_key, title, company, location, description,
			salary_min, salary_max, salary_text, job_type, url, source, external_id, posted_at, raw, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			id, key, j.Title, j.Company, j.Location, j.Description, nullInt(j.SalaryMin), nullInt(j.SalaryMax),
			nullString(j.SalaryText), nullString(j.JobType), j.URL, j.Source, nullString(j.ExternalID), posted, raw, now, now)
	case err == nil:
		_, err = tx.ExecContext(ctx, `UPDATE jobs SET title=?, company=?, location=?, description=?,
			salary_min=?, salary_max=?, salary_text=?, job_type=?, url=?, source=?, external_id=?,
			posted_at=?, raw=?, updated_at=? WHERE id=?`,
			j.Title, j.Company, j.Location, j.Description, nullInt(j.SalaryMin), nullInt(j.SalaryMax),
			nullString(j.SalaryText), nullString(j.JobType), j.URL, j.Source, nullString(j.ExternalID), posted, raw, now, id)
	}
	if err != nil {
		return domain.StoredJob{}, fmt.Errorf("op=sqlite.upsert: %w", classify(err))
	}
	if err = tx.Commit(); err != nil {
		return domain.StoredJob{}, fmt.Errorf("op=sqlite.upsert: %w", classify(err))
	}
	return domain.StoredJob{ID: id, DedupKey: key, Inserted: inserted}, nil
}

// Count returns the number of stored jobs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=sqlite.count: %w", classify(err))
	}
	return n, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case strings.Contains(err.Error(), "constraint failed"):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
