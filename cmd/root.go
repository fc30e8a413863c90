package cmd

import "github.com/spf13/cobra"

// NewRootCmd returns the Cobra entrypoint for the CLI/server.
func NewRootCmd() *cobra.Command {
	endpoint = "http://localhost:8080"
	configPath = "config.yaml"
	root := &cobra.Command{
		Use:   "sailhook",
		Short: "Analytics event adapter for Sailthru",
		Long: "sailhook ingests identify/page/track analytics events over HTTP or a message bus, " +
			"maps them to Sailthru API calls, and delivers them with optional filter rules and a delivery log.",
		Example: "  sailhook serve --config config.yaml\n" +
			"  sailhook send --endpoint http://localhost:8080 event.json\n" +
			"  cat event.json | sailhook send",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&endpoint, "endpoint", endpoint, "Ingest server base URL")
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path to config file")
	root.AddCommand(newServeCmd())
	root.AddCommand(newSendCmd())
	return root
}

var endpoint string
var configPath string
