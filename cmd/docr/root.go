package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/api"
	"github.com/jackzampolin/docr/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docr",
	Short: "OCR documents with the Mistral OCR API",
	Long: `docr runs OCR on documents via the Mistral OCR API.

It accepts a document URL, a local file, or a directory of files, fans
the work out to the remote provider, and persists the results as JSON.
A failure on one file in a directory never aborts the rest.

Run it one-shot from the command line (docr cli) or as an HTTP server
(docr serve).`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docr/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docr home directory (default: ~/.docr)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "yaml", "output format for api commands: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
