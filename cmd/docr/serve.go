package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/config"
	"github.com/jackzampolin/docr/internal/home"
	"github.com/jackzampolin/docr/internal/server"
	"github.com/jackzampolin/docr/internal/server/endpoints"
)

var (
	serveHost    string
	servePort    string
	serveReload  bool
	serveWorkers int
	serveLevel   string
	serveLogFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docr HTTP server",
	Long: `Start the docr HTTP API server.

The server provides:
  - GET  /health       - Server health check
  - POST /ocr/process  - Process a document URL or uploaded file
  - POST /ocr/batch    - Process up to 10 document URLs
  - GET  /providers    - List registered OCR providers
  - GET  /swagger      - Swagger UI

Examples:
  docr serve                       # Start on default port 8000
  docr serve --port 3000           # Start on custom port
  docr serve --reload              # Hot-reload config file changes
  docr serve --workers 4           # Process directory inputs concurrently`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := newServeLogger(serveLevel, serveLogFile)
		if err != nil {
			return err
		}
		defer closeLog()

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		if serveReload {
			cm.WatchConfig()
			logger.Info("config hot-reload enabled")
		}

		host := serveHost
		port := servePort
		if host == "" {
			host = cm.Get().Server.Host
		}
		if port == "" {
			port = cm.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:            host,
			Port:            port,
			ConfigManager:   cm,
			Home:            h,
			Workers:         serveWorkers,
			SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(cmd.Context())
	},
}

// newServeLogger builds the server logger from the --log-level and
// --log-file flags.
func newServeLogger(level, logFile string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level: %s", level)
	}

	var w io.Writer = os.Stdout
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return logger, closeLog, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config: 0.0.0.0)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config: 8000)")
	serveCmd.Flags().BoolVar(&serveReload, "reload", false, "Reload providers when the config file changes")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Concurrent OCR calls for directory inputs (default from config)")
	serveCmd.Flags().StringVar(&serveLevel, "log-level", "info", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(serveCmd)
}
