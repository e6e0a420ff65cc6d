package config

// Config is the full docr configuration.
type Config struct {
	DefaultProvider string                    `mapstructure:"default_provider" yaml:"default_provider"`
	OCRProviders    map[string]OCRProviderCfg `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	Server          ServerCfg                 `mapstructure:"server" yaml:"server"`
	Output          OutputCfg                 `mapstructure:"output" yaml:"output"`

	// Workers bounds concurrent OCR calls during directory processing.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// SupportedExtensions overrides the default extension filter when set.
	SupportedExtensions []string `mapstructure:"supported_extensions" yaml:"supported_extensions"`
}

// OCRProviderCfg configures an OCR provider.
type OCRProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"` // "mistral-ocr"
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`
	IncludeImages  bool    `mapstructure:"include_images" yaml:"include_images"`
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// OutputCfg configures result persistence.
type OutputCfg struct {
	// Dir is the default directory for CLI output files when the output
	// path is relative.
	Dir string `mapstructure:"dir" yaml:"dir"`
}
