package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running docr server via HTTP.

These commands require a running server (docr serve).
Use --server to specify a custom server URL.

Examples:
  docr api health                             # Check server health
  docr api process --url https://ex.com/a.pdf # OCR a URL
  docr api process --file ./scan.pdf          # Upload and OCR a file
  docr api batch <url> [url...]               # OCR a batch of URLs`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8000", "Server URL",
	)

	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ProcessEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.BatchEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ProvidersEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	rootCmd.AddCommand(apiCmd)
}
