package endpoints

import (
	"github.com/jackzampolin/docr/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health
		&HealthEndpoint{},

		// OCR
		&ProcessEndpoint{},
		&BatchEndpoint{},

		// Providers
		&ProvidersEndpoint{},

		// Swagger/OpenAPI
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}
