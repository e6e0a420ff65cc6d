package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/docr/internal/api"
	"github.com/jackzampolin/docr/internal/config"
	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/home"
	"github.com/jackzampolin/docr/internal/providers"
	"github.com/jackzampolin/docr/internal/server/endpoints"
	"github.com/jackzampolin/docr/internal/svcctx"
)

// Server is the docr HTTP server. It owns the OCR provider registry and
// rebuilds it when the configuration file changes.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	homeDir    *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 0.0.0.0)
	Host string
	// Port is the port to listen on (default: 8000)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the docr home directory for uploads and output
	Home *home.Dir
	// Workers bounds concurrent OCR calls for directory inputs
	Workers int
	// SwaggerSpecPath overrides the OpenAPI spec location
	SwaggerSpecPath string
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	extensions := docref.DefaultExtensions()
	workers := cfg.Workers

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		c := cfg.ConfigManager.Get()
		registry.Reload(c.ToRegistryConfig())
		extensions = docref.NewExtensionSet(c.SupportedExtensions...)
		if workers <= 0 {
			workers = c.Workers
		}

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		registry:  registry,
		configMgr: cfg.ConfigManager,
		homeDir:   cfg.Home,
		logger:    cfg.Logger,
	}

	s.services = &svcctx.Services{
		Registry:   registry,
		Logger:     cfg.Logger,
		Home:       cfg.Home,
		Extensions: extensions,
		Workers:    workers,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(s.withRequestID(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // OCR calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Handler returns the fully wrapped HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withRequestID assigns each request an ID and logs method, path, and
// duration on completion.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
