package main

import (
	"github.com/spf13/cobra"

	"stockscore/internal/domain/score"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <ticker>",
		Short: "List logged scores for a ticker, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, err := score.SanitizeTicker(args[0])
			if err != nil {
				return err
			}

			c, err := coreContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			results, err := c.Services.ScoreLog.History(cmd.Context(), ticker, score.ClampHistoryLimit(limit))
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeHistory(cmd.OutOrStdout(), ticker, results)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", score.DefaultHistoryLimit, "Number of rows (max 100)")
	return cmd
}
