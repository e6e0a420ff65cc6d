package config

// DefaultConfig returns the configuration used when no config file is
// present. The Mistral API key is referenced by environment variable so the
// default file can be committed without secrets.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "mistral",
		OCRProviders: map[string]OCRProviderCfg{
			"mistral": {
				Type:           "mistral-ocr",
				Model:          "mistral-ocr-latest",
				APIKey:         "${MISTRAL_API_KEY}",
				RateLimit:      6.0,
				TimeoutSeconds: 120,
				MaxRetries:     3,
				IncludeImages:  true,
				Enabled:        true,
			},
		},
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: "8000",
		},
		Output: OutputCfg{
			Dir: "output",
		},
		Workers: 1,
	}
}
