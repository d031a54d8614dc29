package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stockscore/internal/bootstrap"
)

type rootOptions struct {
	noColor bool
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "scorectl",
		Short: "Operate the stock scoring service",
		Long: `scorectl scores raw metrics payloads offline, runs the full scoring
pipeline against the configured provider and inspects the score log,
cache and event stream.

Configuration is read from the environment and an optional .env file,
exactly as the server reads it.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newScoreCmd(opts),
		newFetchCmd(opts),
		newHistoryCmd(opts),
		newCacheCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("scorectl %s\n", bootstrap.Version)
		},
	}
}

// coreContainer loads configuration and data stores without the chat provider
func coreContainer() (*bootstrap.Container, error) {
	c := bootstrap.NewContainer()
	if err := c.InitConfig(); err != nil {
		return nil, err
	}
	if err := c.InitInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}
	return c, nil
}
