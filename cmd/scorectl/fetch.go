package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"stockscore/internal/bootstrap"
)

// callerID is the rate-limit identity of the CLI
const callerID = "scorectl"

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch <ticker>",
		Short: "Score a ticker through the full pipeline",
		Long: `Run the same pipeline the server runs: rate limit, cache, provider
call, scoring, score log and event. A cached result is returned when fresh.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := bootstrap.NewContainer()
			defer c.Shutdown()
			if err := c.InitCore(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := c.Services.Scores.Score(ctx, callerID, args[0])
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeResult(cmd.OutOrStdout(), res.Data, res.Cached)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline")
	return cmd
}
