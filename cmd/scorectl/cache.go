package main

import (
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Remove every cached response from the configured backend",
		Long: `Remove every cached response. For the redis backend only keys under
the service prefix are deleted. For the memory backend this only affects
the current process and is mostly useful for checking configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := coreContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			if err := c.Services.Cache.Flush(cmd.Context()); err != nil {
				return err
			}
			cmd.Printf("Cache flushed (%s backend)\n", c.Config.Cache.Backend)
			return nil
		},
	})
	return cmd
}
