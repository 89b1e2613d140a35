package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notebookrpc",
		Short:         "Talk to a notebook service over batchexecute",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "TOML configuration file")
	flags.StringVar(&ctx.credentialsFlag, "credentials", "", "Credential file (default: <data dir>/auth.json)")
	flags.StringVar(&ctx.metricsFlag, "metrics", "", "Serve Prometheus metrics on this address")
	flags.BoolVar(&ctx.jsonFlag, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newSourcesCommand(ctx))
	rootCmd.AddCommand(newContentCommand(ctx))
	rootCmd.AddCommand(newQueryCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))

	return rootCmd
}
