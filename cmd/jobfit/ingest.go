package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/jobfit/internal/app"
	obsctx "github.com/fairyhunter13/jobfit/internal/observability"
)

func newIngestCmd(g *globalFlags) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Normalize, dedup and upsert raw postings into SQLite or Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			path := argOr(args, "-")
			records, err := readRecords(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx := obsctx.WithAttrs(cmd.Context(), slog.String("file", path), slog.String("source", source))
			store, closeStore, err := g.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			svcs, err := app.BuildServices(ctx, cfg, store)
			if err != nil {
				return err
			}
			report, err := svcs.Ingest.Ingest(ctx, source, records)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "source tag (serpapi, indeed, playwright, greenhouse, lever, ...)")
	cmd.Flags().StringVar(&g.sqlitePath, "sqlite", "", "SQLite database file")
	cmd.Flags().StringVar(&g.dbURL, "db-url", "", "Postgres DSN (default: DB_URL)")
	return cmd
}
