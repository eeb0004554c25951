package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/jobfit/internal/app"
	obsctx "github.com/fairyhunter13/jobfit/internal/observability"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
)

func newNormalizeCmd(g *globalFlags) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize and dedup raw postings; prints canonical jobs",
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
			svcs, err := app.BuildServices(ctx, cfg, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svcs.Ingest.Normalize(ctx, source, records))
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "source tag ("+strings.Join(normalize.New().Sources(), ", ")+", or any other tag)")
	return cmd
}

func argOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}
