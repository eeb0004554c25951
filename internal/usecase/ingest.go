package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/domain"
	obsctx "github.com/fairyhunter13/jobfit/internal/observability"
	"github.com/fairyhunter13/jobfit/internal/service/dedup"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
)

// Defaults for IngestService.
const (
	DefaultStoreTimeout      = 5 * time.Second
	DefaultIngestConcurrency = 4
)

// Record failure stages.
const (
	StageNormalize = "normalize"
	StageStore     = "store"
)

// RecordError describes one record that could not be processed.
type RecordError struct {
	// Index points into the submitted records for normalize failures and into
	// NormalizeResult.Jobs for store failures.
	Index     int    `json:"index"`
	Stage     string `json:"stage"`
	DedupKey  string `json:"dedup_key,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// NormalizeResult is a normalized, de-duplicated batch.
type NormalizeResult struct {
	Source     string                `json:"source"`
	Jobs       []domain.CanonicalJob `json:"jobs"`
	Duplicates int                   `json:"duplicates"`
	Errors     []RecordError         `json:"errors,omitempty"`
}

// IngestReport summarises one ingestion batch.
type IngestReport struct {
	Source     string             `json:"source"`
	Received   int                `json:"received"`
	Normalized int                `json:"normalized"`
	Duplicates int                `json:"duplicates"`
	Upserted   int                `json:"upserted"`
	Inserted   int                `json:"inserted"`
	Stored     []domain.StoredJob `json:"stored"`
	Errors     []RecordError      `json:"errors,omitempty"`
}

// IngestService normalizes raw postings and hands them to a JobStore.
type IngestService struct {
	Normalizer   *normalize.Normalizer
	Store        domain.JobStore
	Retry        domain.RetryConfig
	StoreTimeout time.Duration
	Concurrency  int
}

// NewIngestService constructs an IngestService. store may be nil when only
// Normalize is used.
func NewIngestService(n *normalize.Normalizer, store domain.JobStore, retry domain.RetryConfig, storeTimeout time.Duration, concurrency int) IngestService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultIngestConcurrency
	}
	return IngestService{Normalizer: n, Store: store, Retry: retry.Validate(), StoreTimeout: storeTimeout, Concurrency: concurrency}
}

// Normalize maps every record and drops duplicates. It performs no I/O.
// Records that are not objects are reported and skipped.
func (s IngestService) Normalize(_ domain.Context, source string, records []any) NormalizeResult {
	res := NormalizeResult{Source: normalize.SourceTag(source), Jobs: make([]domain.CanonicalJob, 0, len(records))}
	for i, raw := range records {
		job, err := s.Normalizer.Normalize(raw, source)
		if err != nil {
			res.Errors = append(res.Errors, RecordError{Index: i, Stage: StageNormalize, Message: err.Error()})
			continue
		}
		res.Jobs = append(res.Jobs, job)
	}
	res.Jobs, res.Duplicates = dedup.Filter(res.Jobs)

	observability.IngestRecords(res.Source, "normalized", len(res.Jobs))
	observability.IngestRecords(res.Source, "duplicate", res.Duplicates)
	observability.IngestRecords(res.Source, "invalid", len(res.Errors))
	return res
}

// Ingest normalizes records and upserts the unique jobs. Store failures are
// reported per record; the batch is never aborted by one of them.
func (s IngestService) Ingest(ctx domain.Context, source string, records []any) (IngestReport, error) {
	if s.Store == nil {
		return IngestReport{}, fmt.Errorf("op=ingest.Ingest: %w: no job store configured", domain.ErrStoreUnavailable)
	}
	norm := s.Normalize(ctx, source, records)
	report := IngestReport{
		Source:     norm.Source,
		Received:   len(records),
		Normalized: len(norm.Jobs) + norm.Duplicates,
		Duplicates: norm.Duplicates,
		Errors:     norm.Errors,
	}

	stored := make([]domain.StoredJob, len(norm.Jobs))
	failures := make([]error, len(norm.Jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i := range norm.Jobs {
		g.Go(func() error {
			stored[i], failures[i] = s.upsert(gctx, norm.Jobs[i])
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range failures {
		if err != nil {
			report.Errors = append(report.Errors, RecordError{
				Index:     i,
				Stage:     StageStore,
				DedupKey:  dedup.Key(norm.Jobs[i]),
				Message:   err.Error(),
				Retryable: domain.IsRetryable(err),
			})
			continue
		}
		report.Upserted++
		if stored[i].Inserted {
			report.Inserted++
		}
		report.Stored = append(report.Stored, stored[i])
	}

	observability.IngestRecords(report.Source, "upserted", report.Upserted)
	observability.IngestRecords(report.Source, "store_failed", len(norm.Jobs)-report.Upserted)
	obsctx.LoggerFromContext(ctx).Info("ingest batch done",
		slog.String("source", report.Source),
		slog.Int("received", report.Received),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("upserted", report.Upserted),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// upsert writes one job, retrying retryable store errors with exponential backoff.
func (s IngestService) upsert(ctx context.Context, job domain.CanonicalJob) (domain.StoredJob, error) {
	var out domain.StoredJob
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
		defer cancel()
		res, err := s.Store.Upsert(callCtx, job)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
			}
			if !domain.IsRetryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		out = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		obsctx.LoggerFromContext(ctx).Warn("job upsert failed, retrying",
			slog.String("dedup_key", dedup.Key(job)),
			slog.Duration("backoff", wait),
			slog.Any("error", err))
	}
	if err := backoff.RetryNotify(op, s.backoff(ctx), notify); err != nil {
		return domain.StoredJob{}, fmt.Errorf("op=ingest.upsert: %w", err)
	}
	return out, nil
}

func (s IngestService) backoff(ctx context.Context) backoff.BackOff {
	rc := s.Retry.Validate()
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = rc.InitialDelay
	expo.MaxInterval = rc.MaxDelay
	expo.Multiplier = rc.Multiplier
	expo.MaxElapsedTime = 0
	if !rc.Jitter {
		expo.RandomizationFactor = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(rc.MaxRetries)), ctx)
}
