package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/jobfit/internal/adapter/repo/sqlite"
	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

const appName = "jobfit"

// globalFlags override environment configuration for one run.
type globalFlags struct {
	debug      bool
	jsonLogs   bool
	scoring    string
	weightSet  string
	skillMode  string
	sqlitePath string
	dbURL      string
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           appName,
		Short:         "jobfit normalizes job postings and scores how well they fit a candidate",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&g.debug, "debug", "d", false, "verbose/debug output")
	pf.BoolVarP(&g.jsonLogs, "json", "j", false, "json format for logging")
	pf.StringVar(&g.scoring, "scoring", "", "scoring YAML file (default: SCORING_CONFIG_PATH or the embedded file)")
	pf.StringVar(&g.weightSet, "weight-set", "", "named weight set from the scoring file")
	pf.StringVar(&g.skillMode, "skill-mode", "", "skill extraction mode: generic or vocabulary")

	root.AddCommand(newNormalizeCmd(&g), newScoreCmd(&g), newIngestCmd(&g))
	return root
}

// loadConfig reads the environment and applies flag overrides.
func (g *globalFlags) loadConfig(out io.Writer) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if g.scoring != "" {
		cfg.ScoringConfigPath = g.scoring
	}
	if g.weightSet != "" {
		cfg.WeightSet = g.weightSet
	}
	if g.skillMode != "" {
		cfg.SkillMode = g.skillMode
	}
	if g.dbURL != "" {
		cfg.DBURL = g.dbURL
	}

	opts := []observability.LoggerOption{observability.WithWriter(out), observability.WithDebug(g.debug)}
	if !g.jsonLogs {
		opts = append(opts, observability.WithText())
	}
	slog.SetDefault(observability.SetupLogger(cfg, opts...))
	return cfg, nil
}

// openStore returns the SQLite store when --sqlite is set, else Postgres when
// a DSN is configured. The closer is never nil.
func (g *globalFlags) openStore(ctx context.Context, cfg config.Config) (domain.JobStore, func(), error) {
	switch {
	case g.sqlitePath != "":
		s, err := sqlite.Open(ctx, g.sqlitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	case cfg.DBURL != "":
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("db connect: %w", err)
		}
		repo := postgres.NewJobRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return repo, pool.Close, nil
	}
	return nil, func() {}, fmt.Errorf("%w: ingest needs --sqlite or --db-url (DB_URL)", domain.ErrInvalidArgument)
}

// readRecords accepts a JSON array of records or an object with a "jobs" array.
// "-" reads stdin.
func readRecords(path string, stdin io.Reader) ([]any, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, path, err)
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if jobs, ok := t["jobs"].([]any); ok {
			return jobs, nil
		}
		return []any{t}, nil
	}
	return nil, fmt.Errorf("%w: %s: expected a JSON array or object", domain.ErrInvalidArgument, path)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("%w: stdin is already used for jobs", domain.ErrInvalidArgument)
		}
		return io.ReadAll(stdin)
	}
	// #nosec G304 -- path is a CLI argument
	return os.ReadFile(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
