package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/usecase"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FEATURE_AI_FIT", "false")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const leverJobs = `[
	{"text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/1","categories":{"location":"Remote"}},
	{"text":"Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/1?utm_medium=email"},
	{"text":"Designer","hostedUrl":"https://jobs.lever.co/acme/2"}
]`

func TestNormalizeCmd(t *testing.T) {
	out, err := execute(t, leverJobs, "normalize", "--source", "lever")
	require.NoError(t, err)

	var res usecase.NormalizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "lever", res.Source)
	assert.Len(t, res.Jobs, 2)
	assert.Equal(t, 1, res.Duplicates)
}

func TestScoreCmd_SingleAndRank(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("Senior backend engineer, Go and PostgreSQL"), 0o600))
	profile := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(profile, []byte(`{"desired_title":"Backend Engineer","remote_ok":true}`), 0o600))

	out, err := execute(t, `{"title":"Backend Engineer","location":"Remote"}`, "score", "-r", resume, "-p", profile, "--no-ai")
	require.NoError(t, err)
	var res domain.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.MethodHeuristic, res.Method)
	assert.Len(t, res.Factors, 5)

	out, err = execute(t, `{"jobs":[{"title":"Florist"},{"title":"Backend Engineer"}]}`, "score", "-r", resume, "-n", "1")
	require.NoError(t, err)
	var ranked []domain.RankedJob
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "Backend Engineer", ranked[0].Title)
}

func TestIngestCmd_SQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobs.db")
	out, err := execute(t, leverJobs, "ingest", "--source", "lever", "--sqlite", db)
	require.NoError(t, err)

	var report usecase.IngestReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Received)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 2, report.Inserted)

	out, err = execute(t, leverJobs, "ingest", "--source", "lever", "--sqlite", db)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Upserted)
	assert.Zero(t, report.Inserted, "second run updates in place")
}

func TestIngestCmd_NeedsStore(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := execute(t, leverJobs, "ingest")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestReadRecords(t *testing.T) {
	recs, err := readRecords("-", strings.NewReader(`{"title":"solo"}`))
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = readRecords("-", strings.NewReader(`42`))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = readInput("-", nil)
	assert.Error(t, err)
}
