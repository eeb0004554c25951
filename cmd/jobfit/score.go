package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/jobfit/internal/app"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

type scoreFlags struct {
	resume  string
	profile string
	noAI    bool
	limit   int
}

func newScoreCmd(g *globalFlags) *cobra.Command {
	var f scoreFlags
	cmd := &cobra.Command{
		Use:   "score [jobs-file]",
		Short: "Score one job, or rank several, against a résumé and profile",
		Long: "Reads a job object or an array of jobs. One job prints a score result;\n" +
			"several jobs print a ranking, best first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			jobs, err := readRecords(argOr(args, "-"), cmd.InOrStdin())
			if err != nil {
				return err
			}
			resume, profile, err := f.candidate()
			if err != nil {
				return err
			}
			var useAI *bool
			if f.noAI {
				no := false
				useAI = &no
			}

			ctx := cmd.Context()
			svcs, err := app.BuildServices(ctx, cfg, nil)
			if err != nil {
				return err
			}
			if len(jobs) == 1 {
				res, err := svcs.Fit.Score(ctx, domain.ScoreRequest{Job: jobs[0], ResumeText: resume, Profile: profile, UseAI: useAI})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			ranked, err := svcs.Fit.Rank(ctx, domain.RankRequest{Jobs: jobs, ResumeText: resume, Profile: profile, UseAI: useAI, Limit: f.limit})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ranked)
		},
	}
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "plain-text résumé file")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "candidate profile JSON file")
	cmd.Flags().BoolVar(&f.noAI, "no-ai", false, "skip AI refinement even when configured")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "keep only the best N jobs when ranking")
	return cmd
}

func (f scoreFlags) candidate() (*string, *domain.Profile, error) {
	var resume *string
	if f.resume != "" {
		b, err := readInput(f.resume, nil)
		if err != nil {
			return nil, nil, err
		}
		s := strings.TrimSpace(string(b))
		resume = &s
	}
	var profile *domain.Profile
	if f.profile != "" {
		b, err := readInput(f.profile, nil)
		if err != nil {
			return nil, nil, err
		}
		profile = &domain.Profile{}
		if err := json.Unmarshal(b, profile); err != nil {
			return nil, nil, fmt.Errorf("%w: profile %s: %v", domain.ErrInvalidArgument, f.profile, err)
		}
	}
	return resume, profile, nil
}
