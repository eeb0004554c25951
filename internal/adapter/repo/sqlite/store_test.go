package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UpsertInsertThenUpdate(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	posted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	lo := 100000
	job := domain.CanonicalJob{
		Title:     "Go Engineer",
		Company:   "Acme",
		URL:       "https://acme.example/jobs/1",
		Source:    "lever",
		SalaryMin: &lo,
		PostedAt:  &posted,
		Raw:       domain.RawRecord{"id": "1"},
	}

	first, err := s.Upsert(ctx, job)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.Equal(t, "url:https://acme.example/jobs/1", first.DedupKey)

	job.Title = "Staff Go Engineer"
	second, err := s.Upsert(ctx, job)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, first.ID, second.ID)

	var title string
	var salaryMin int
	require.NoError(t, s.DB.QueryRow(`SELECT title, salary_min FROM jobs WHERE id = ?`, first.ID).Scan(&title, &salaryMin))
	assert.Equal(t, "Staff Go Engineer", title)
	assert.Equal(t, 100000, salaryMin)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_DistinctKeys(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	ext := "42"
	jobs := []domain.CanonicalJob{
		{Title: "A", Company: "X", Source: "indeed", ExternalID: &ext},
		{Title: "A", Company: "X", Source: "lever", ExternalID: &ext},
		{Title: "B", Company: "Y", Location: "Berlin", Source: "custom"},
	}
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upsert(ctx, j)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_CanceledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Upsert(ctx, domain.CanonicalJob{Title: "A", Company: "B", Source: "x"})
	assert.Error(t, err)
}
