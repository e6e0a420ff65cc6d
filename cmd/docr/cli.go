package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/config"
	"github.com/jackzampolin/docr/internal/dispatch"
	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/output"
	"github.com/jackzampolin/docr/internal/providers"
)

// defaultOutputFile is the result filename used when --output is omitted.
const defaultOutputFile = "ocr_response.json"

var (
	cliInput   string
	cliOutput  string
	cliVerbose bool
	cliLogFile string
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Run OCR once and write results to a JSON file",
	Long: `Process a document URL, a local file, or a directory of files with the
configured OCR provider and persist the results as a JSON array of
{file, response} records.

Directory inputs are filtered to supported file types. A failure on one
file is logged and recorded, the remaining files still process.

Examples:
  docr cli -i https://example.com/paper.pdf
  docr cli -i ./scan.png -o scan.json
  docr cli -i ./scans/ -o results.json --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := newCLILogger(cliVerbose, cliLogFile)
		if err != nil {
			return err
		}
		defer closeLog()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToRegistryConfig())

		provider, err := registry.Default()
		if err != nil {
			return err
		}

		dispatcher := dispatch.New(dispatch.Config{
			Provider:   provider,
			Extensions: docref.NewExtensionSet(cfg.SupportedExtensions...),
			Logger:     logger,
			Workers:    cfg.Workers,
		})

		result, err := dispatcher.Process(cmd.Context(), cliInput)
		if err != nil {
			logger.Error("processing failed", "input", cliInput, "error", err)
			return err
		}

		for _, f := range result.Failures {
			logger.Warn("file failed", "file", f.File, "kind", f.Kind, "error", f.Message)
		}

		outPath := cliOutput
		if outPath == "" {
			outPath = filepath.Join(cfg.Output.Dir, defaultOutputFile)
		}
		if err := output.Save(result.Records, outPath); err != nil {
			return err
		}

		logger.Info("results saved",
			"output", outPath,
			"processed", len(result.Records),
			"failed", len(result.Failures),
		)
		fmt.Printf("Processed %d document(s), %d failed. Results written to %s\n",
			len(result.Records), len(result.Failures), outPath)
		return nil
	},
}

// newCLILogger builds a text logger, optionally teeing to a log file.
// The returned func closes the log file if one was opened.
func newCLILogger(verbose bool, logFile string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeLog, nil
}

func init() {
	cliCmd.Flags().StringVarP(&cliInput, "input", "i", "", "Document URL, file, or directory to process")
	cliCmd.Flags().StringVarP(&cliOutput, "output", "o", "", "Path for the results JSON (default: <output dir>/"+defaultOutputFile+")")
	cliCmd.Flags().BoolVarP(&cliVerbose, "verbose", "v", false, "Enable debug logging")
	cliCmd.Flags().StringVarP(&cliLogFile, "log-file", "l", "", "Also write logs to this file")
	cliCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(cliCmd)
}
