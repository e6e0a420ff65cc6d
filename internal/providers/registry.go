package providers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/docr/internal/docref"
)

// Registry holds references to OCR providers. It supports config-driven
// instantiation, hot-reload, and provides thread-safe access.
type Registry struct {
	mu           sync.RWMutex
	ocrProviders map[string]OCRProvider
	defaultName  string
	logger       *slog.Logger
}

// OCRProviderConfig configures a single provider entry.
type OCRProviderConfig struct {
	Type          string
	Model         string
	APIKey        string
	BaseURL       string
	RateLimit     float64
	MaxRetries    int
	TimeoutSecs   int
	IncludeImages bool
	Enabled       bool
	Extensions    []string
}

// RegistryConfig configures the full registry.
type RegistryConfig struct {
	Default      string
	OCRProviders map[string]OCRProviderConfig
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		ocrProviders: make(map[string]OCRProvider),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterOCR registers an OCR provider by name.
func (r *Registry) RegisterOCR(name string, provider OCRProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocrProviders[name] = provider
	if r.defaultName == "" {
		r.defaultName = name
	}
	if r.logger != nil {
		r.logger.Info("registered OCR provider", "name", name)
	}
}

// UnregisterOCR removes an OCR provider by name.
func (r *Registry) UnregisterOCR(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ocrProviders, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	if r.logger != nil {
		r.logger.Info("unregistered OCR provider", "name", name)
	}
}

// GetOCR returns an OCR provider by name.
func (r *Registry) GetOCR(name string) (OCRProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.ocrProviders[name]
	if !ok {
		return nil, fmt.Errorf("OCR provider not found: %s", name)
	}
	return provider, nil
}

// Default returns the default OCR provider.
func (r *Registry) Default() (OCRProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, fmt.Errorf("no OCR provider configured")
	}
	provider, ok := r.ocrProviders[r.defaultName]
	if !ok {
		return nil, fmt.Errorf("default OCR provider not found: %s", r.defaultName)
	}
	return provider, nil
}

// ListOCR returns all registered OCR provider names.
func (r *Registry) ListOCR() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ocrProviders))
	for name := range r.ocrProviders {
		names = append(names, name)
	}
	return names
}

// Reload replaces the registry contents from config. Providers that are
// disabled or of unknown type are skipped with a log line.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fresh := make(map[string]OCRProvider, len(cfg.OCRProviders))
	for name, pc := range cfg.OCRProviders {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case MistralOCRName:
			fresh[name] = NewMistralOCRClient(MistralOCRConfig{
				APIKey:        pc.APIKey,
				BaseURL:       pc.BaseURL,
				Model:         pc.Model,
				Timeout:       time.Duration(pc.TimeoutSecs) * time.Second,
				IncludeImages: pc.IncludeImages,
				RateLimit:     pc.RateLimit,
				MaxRetries:    pc.MaxRetries,
				Extensions:    docref.NewExtensionSet(pc.Extensions...),
			})
		default:
			if r.logger != nil {
				r.logger.Warn("unknown OCR provider type, skipping", "name", name, "type", pc.Type)
			}
		}
	}

	r.ocrProviders = fresh
	r.defaultName = cfg.Default
	if r.defaultName == "" && len(fresh) == 1 {
		for name := range fresh {
			r.defaultName = name
		}
	}
	if r.logger != nil {
		r.logger.Info("OCR provider registry reloaded", "providers", len(fresh))
	}
}
