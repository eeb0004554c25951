package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/dedup"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
	"github.com/fairyhunter13/jobfit/internal/usecase"
)

var fastRetry = domain.RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

func newIngestService(store domain.JobStore) usecase.IngestService {
	return usecase.NewIngestService(normalize.New(), store, fastRetry, time.Second, 2)
}

func indeedRecords() []any {
	return []any{
		map[string]any{"title": "Go Engineer", "company": "Acme", "link": "https://indeed.com/viewjob?jk=abc&utm_source=x"},
		map[string]any{"title": "Go Engineer", "company": "Acme", "link": "https://indeed.com/viewjob?jk=abc"},
		"not an object",
		map[string]any{"title": "Data Engineer", "company": "Beta", "link": "https://indeed.com/viewjob?jk=def"},
	}
}

func TestIngest_Normalize(t *testing.T) {
	t.Parallel()
	svc := newIngestService(nil)
	res := svc.Normalize(context.Background(), " Indeed ", indeedRecords())

	assert.Equal(t, "indeed", res.Source)
	require.Len(t, res.Jobs, 2)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Index)
	assert.Equal(t, usecase.StageNormalize, res.Errors[0].Stage)
	assert.Equal(t, "abc", *res.Jobs[0].ExternalID)
}

func TestIngest_SameURLAcrossSources(t *testing.T) {
	t.Parallel()
	svc := newIngestService(nil)
	a := svc.Normalize(context.Background(), "zyte", []any{map[string]any{"title": "A", "url": "https://jobs.example.com/1"}})
	b := svc.Normalize(context.Background(), "playwright", []any{map[string]any{"title": "A", "url": "https://jobs.example.com/1#apply"}})
	require.Len(t, a.Jobs, 1)
	require.Len(t, b.Jobs, 1)
	assert.Equal(t, dedup.Key(a.Jobs[0]), dedup.Key(b.Jobs[0]))
}

func TestIngest_UpsertsUniqueJobs(t *testing.T) {
	t.Parallel()
	store := &mockJobStore{}
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(j domain.CanonicalJob) bool { return j.Title == "Go Engineer" })).
		Return(domain.StoredJob{ID: "1", DedupKey: "k1", Inserted: true}, nil).Once()
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(j domain.CanonicalJob) bool { return j.Title == "Data Engineer" })).
		Return(domain.StoredJob{ID: "2", DedupKey: "k2", Inserted: false}, nil).Once()

	report, err := newIngestService(store).Ingest(context.Background(), "indeed", indeedRecords())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Received)
	assert.Equal(t, 3, report.Normalized)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 1, report.Inserted)
	assert.Len(t, report.Stored, 2)
	require.Len(t, report.Errors, 1)
	store.AssertExpectations(t)
}

func TestIngest_RetriesRetryableStoreErrors(t *testing.T) {
	t.Parallel()
	store := &mockJobStore{}
	store.On("Upsert", mock.Anything, mock.Anything).Return(domain.StoredJob{}, domain.ErrStoreUnavailable).Twice()
	store.On("Upsert", mock.Anything, mock.Anything).Return(domain.StoredJob{ID: "1", Inserted: true}, nil).Once()

	report, err := newIngestService(store).Ingest(context.Background(), "zyte", []any{
		map[string]any{"title": "A", "company": "B", "url": "https://x.example/1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Empty(t, report.Errors)
	store.AssertNumberOfCalls(t, "Upsert", 3)
}

func TestIngest_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()
	store := &mockJobStore{}
	store.On("Upsert", mock.Anything, mock.Anything).Return(domain.StoredJob{}, domain.ErrStoreUnavailable)

	report, err := newIngestService(store).Ingest(context.Background(), "zyte", []any{
		map[string]any{"title": "A", "company": "B", "url": "https://x.example/1"},
	})
	require.NoError(t, err)
	assert.Zero(t, report.Upserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, usecase.StageStore, report.Errors[0].Stage)
	assert.True(t, report.Errors[0].Retryable)
	assert.Equal(t, "url:https://x.example/1", report.Errors[0].DedupKey)
	store.AssertNumberOfCalls(t, "Upsert", 1+fastRetry.MaxRetries)
}

func TestIngest_DoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()
	store := &mockJobStore{}
	store.On("Upsert", mock.Anything, mock.Anything).Return(domain.StoredJob{}, errors.Join(domain.ErrConflict, errors.New("check violation")))

	report, err := newIngestService(store).Ingest(context.Background(), "zyte", []any{
		map[string]any{"title": "A", "url": "https://x.example/1"},
	})
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.False(t, report.Errors[0].Retryable)
	store.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestIngest_RequiresStore(t *testing.T) {
	t.Parallel()
	_, err := newIngestService(nil).Ingest(context.Background(), "zyte", nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
