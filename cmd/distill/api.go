package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/distill/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Distill server via HTTP.

These commands require a running server (distill serve).
Use --server to specify a custom server URL.

Examples:
  distill api health                                   # Check server health
  distill api extract -s schema.yaml -t source.txt     # Run an extraction
  distill api prompts                                  # List embedded prompts`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	for _, ep := range endpoints.All() {
		apiCmd.AddCommand(ep.Command(getServerURL))
	}

	rootCmd.AddCommand(apiCmd)
}
