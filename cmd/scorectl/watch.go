package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stockscore/internal/adapters/kafka"
	"stockscore/internal/bootstrap"
	"stockscore/internal/domain/score"
)

func newWatchCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail score.computed events from Kafka",
		Long: `Print each score.computed event as it arrives. Without --group a
throwaway consumer group follows every partition from its newest offset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := bootstrap.NewContainer()
			defer c.Shutdown()
			if err := c.InitConfig(); err != nil {
				return err
			}

			sub, err := kafka.NewSubscriber(c.Config.Kafka, group)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cmd.Printf("Watching %s (Ctrl+C to stop)\n", c.Config.Kafka.ScoreTopic)
			err = sub.Consume(ctx, func(_ context.Context, e score.ComputedEvent) error {
				cmd.Printf("%s  %-8s %3d  %s  %s  confidence %d%%\n",
					humanize.Time(e.Timestamp), e.Ticker, e.Score,
					gradeColor(e.Grade).Sprint(e.Grade), e.Classification, e.Confidence)
				return nil
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Consumer group to join")
	return cmd
}
