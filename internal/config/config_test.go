package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultProvider != "mistral" {
		t.Errorf("default provider = %s, want mistral", cfg.DefaultProvider)
	}
	mistral, ok := cfg.OCRProviders["mistral"]
	if !ok {
		t.Fatal("expected mistral provider entry")
	}
	if mistral.APIKey != "${MISTRAL_API_KEY}" {
		t.Error("expected mistral API key placeholder")
	}
	if !mistral.Enabled {
		t.Error("expected mistral provider enabled by default")
	}
	if cfg.Workers != 1 {
		t.Errorf("workers = %d, want 1 (sequential)", cfg.Workers)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestToRegistryConfig(t *testing.T) {
	os.Setenv("TEST_MISTRAL_KEY", "mk-123")
	defer os.Unsetenv("TEST_MISTRAL_KEY")

	cfg := &Config{
		DefaultProvider: "mistral",
		OCRProviders: map[string]OCRProviderCfg{
			"mistral": {
				Type:      "mistral-ocr",
				APIKey:    "${TEST_MISTRAL_KEY}",
				RateLimit: 6.0,
				Enabled:   true,
			},
		},
		SupportedExtensions: []string{".pdf", ".png"},
	}

	rc := cfg.ToRegistryConfig()
	if rc.Default != "mistral" {
		t.Errorf("default = %s", rc.Default)
	}
	pc, ok := rc.OCRProviders["mistral"]
	if !ok {
		t.Fatal("expected mistral entry")
	}
	if pc.APIKey != "mk-123" {
		t.Errorf("expected resolved API key, got %s", pc.APIKey)
	}
	if len(pc.Extensions) != 2 {
		t.Errorf("extensions = %v", pc.Extensions)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
default_provider: mistral
server:
  host: 127.0.0.1
  port: "9000"
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Server.Port != "9000" {
			t.Errorf("port = %s, want 9000", cfg.Server.Port)
		}
		if cfg.Server.Host != "127.0.0.1" {
			t.Errorf("host = %s, want 127.0.0.1", cfg.Server.Host)
		}
	})
}

func TestManager_OnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configFile, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 2 {
		t.Errorf("expected 2 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty config file")
	}
}
