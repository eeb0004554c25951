package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobfit/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
	"github.com/fairyhunter13/jobfit/internal/service/scoring"
	"github.com/fairyhunter13/jobfit/internal/usecase"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

type memStore struct{ keys map[string]bool }

func (m *memStore) Upsert(_ domain.Context, j domain.CanonicalJob) (domain.StoredJob, error) {
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	key := j.URL
	inserted := !m.keys[key]
	m.keys[key] = true
	return domain.StoredJob{ID: "id-" + key, DedupKey: key, Inserted: inserted}, nil
}

func newServer(t *testing.T, store domain.JobStore, checks ...httpserver.ReadinessCheck) *httpserver.Server {
	t.Helper()
	ex, err := textx.NewSkillExtractor(textx.SkillModeGeneric, nil)
	require.NoError(t, err)
	engine, err := scoring.NewEngine(ex, scoring.DefaultWeights())
	require.NoError(t, err)
	fit := usecase.NewFitService(engine, nil, normalize.SalaryParser{}, 2)
	ingest := usecase.NewIngestService(normalize.New(), store, domain.RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}, time.Second, 2)
	return httpserver.NewServer(config.Config{MaxBodyMB: 1, MaxBatchSize: 3}, fit, ingest, checks...)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, map[string]any) {
	t.Helper()
	var env struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code, env.Error.Details
}

func TestScoreHandler_OK(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)
	rec := post(s.ScoreHandler(), `{"job":{"title":"Go Engineer","description":"Go, Docker"},"resumeText":"Go developer with Docker"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res domain.ScoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Factors, 5)
	assert.Equal(t, domain.MethodHeuristic, res.Method)
	assert.Greater(t, res.FitScore, 0.0)
}

func TestScoreHandler_Validation(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)

	rec := post(s.ScoreHandler(), `{"resumeText":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, details := decodeError(t, rec)
	assert.Equal(t, "INVALID_ARGUMENT", code)
	assert.Equal(t, "required", details["job"])

	rec = post(s.ScoreHandler(), `{"job":{"title":"x"},"profile":{"min_salary":-5}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, details = decodeError(t, rec)
	assert.Equal(t, "gte", details["profile.min_salary"])

	rec = post(s.ScoreHandler(), `{"job":"not an object"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(s.ScoreHandler(), `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreHandler_NotAcceptable(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	s.ScoreHandler()(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestScoreHandler_PayloadTooLarge(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)
	big := `{"job":{"title":"x"},"resumeText":"` + strings.Repeat("a", 2<<20) + `"}`
	rec := post(s.ScoreHandler(), big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, details := decodeError(t, rec)
	assert.Contains(t, details, "max_bytes")
}

func TestRankHandler(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)
	rec := post(s.RankHandler(), `{"jobs":[{"title":"Designer"},{"title":"Go Engineer","description":"Go"}],"resumeText":"Go engineer","limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out httpserver.RankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 1, out.Count)
	assert.Equal(t, 1, out.Results[0].Index)

	rec = post(s.RankHandler(), `{"jobs":[{},{},{},{}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "over the batch limit")

	rec = post(s.RankHandler(), `{"jobs":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizeHandler(t *testing.T) {
	t.Parallel()
	s := newServer(t, nil)
	rec := post(s.NormalizeHandler(), `{"source":"lever","jobs":[
		{"text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/1"},
		{"text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/1?utm_source=x"},
		"oops"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res usecase.NormalizeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "lever", res.Source)
	assert.Len(t, res.Jobs, 1)
	assert.Equal(t, 1, res.Duplicates)
	assert.Len(t, res.Errors, 1)
}

func TestIngestHandler(t *testing.T) {
	t.Parallel()
	s := newServer(t, &memStore{})
	rec := post(s.IngestHandler(), `{"source":"greenhouse","jobs":[{"title":"SRE","absolute_url":"https://boards.greenhouse.io/a/jobs/1"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report usecase.IngestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, report.Inserted)

	noStore := newServer(t, nil)
	rec = post(noStore.IngestHandler(), `{"jobs":[{"title":"SRE"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "STORE_UNAVAILABLE", code)
}

func TestHealthAndReadiness(t *testing.T) {
	t.Parallel()
	ok := httpserver.ReadinessCheck{Name: "db", Check: func(context.Context) error { return nil }}
	bad := httpserver.ReadinessCheck{Name: "ai", Check: func(context.Context) error { return errors.New("circuit open") }}

	s := newServer(t, nil, ok)
	rec := httptest.NewRecorder()
	s.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newServer(t, nil, ok, bad)
	rec = httptest.NewRecorder()
	s.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "circuit open")

	rec = httptest.NewRecorder()
	s.HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
