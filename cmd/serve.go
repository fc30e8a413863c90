package cmd

import (
	"github.com/spf13/cobra"

	"sailhook/pkg/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ingest server",
		Long: "Run the server that ingests analytics events, evaluates filter rules, and " +
			"delivers mapped payloads to Sailthru. Starts the bus consumer when one is configured.",
		Example: "  sailhook serve --config config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.RunConfig(configPath)
		},
	}
	return cmd
}
