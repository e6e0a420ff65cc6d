// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/docr/internal/dispatch"
	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/home"
	"github.com/jackzampolin/docr/internal/providers"
)

// Services holds the core services that flow through request context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry   *providers.Registry
	Logger     *slog.Logger
	Home       *home.Dir
	Extensions docref.ExtensionSet

	// Workers bounds concurrent OCR calls for directory processing.
	Workers int
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// DispatcherFrom builds a dispatcher from the services in context.
// The dispatcher resolves the provider registry's current default, so a
// config hot-reload takes effect on the next request. Returns nil if
// services or the provider are missing.
func DispatcherFrom(ctx context.Context) *dispatch.Dispatcher {
	s := ServicesFrom(ctx)
	if s == nil || s.Registry == nil {
		return nil
	}
	provider, err := s.Registry.Default()
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("no OCR provider available", "error", err)
		}
		return nil
	}
	return dispatch.New(dispatch.Config{
		Provider:   provider,
		Extensions: s.Extensions,
		Logger:     s.Logger,
		Workers:    s.Workers,
	})
}
