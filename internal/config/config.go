package config

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Config represents the main weft configuration.
type Config struct {
	// Providers maps provider keys to their backend configuration.
	Providers map[string]ProviderConfig `json:"providers" mapstructure:"providers"`

	// Defaults select the startup provider/model and sampling.
	Defaults DefaultsConfig `json:"defaults" mapstructure:"defaults"`

	// Fallback names the secondary backend used when the primary fails.
	Fallback FallbackConfig `json:"fallback" mapstructure:"fallback"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// DataDir holds persisted agent histories (default ~/.weft).
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Quiet starts the session in quiet mode.
	Quiet bool `json:"quiet" mapstructure:"quiet"`
}

// ProviderConfig holds one completion backend.
type ProviderConfig struct {
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	// Models maps short model keys to remote model names.
	Models map[string]string `json:"models" mapstructure:"models"`
}

// DefaultsConfig holds the startup selection and sampling parameters.
type DefaultsConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"`
	Model       string  `json:"model" mapstructure:"model"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// FallbackConfig names the secondary provider and its model key.
type FallbackConfig struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Model    string `json:"model" mapstructure:"model"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values. Credentials are
// filled from the environment by the loader.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderConfig{
			"anthropic": {
				Models: map[string]string{
					"haiku":  "claude-3-5-haiku-latest",
					"sonnet": "claude-sonnet-4-20250514",
					"opus":   "claude-opus-4-1",
				},
			},
			"openai": {
				Endpoint: "https://api.openai.com/v1",
				Models: map[string]string{
					"gpt4":     "gpt-4o",
					"gpt4mini": "gpt-4o-mini",
				},
			},
		},
		Defaults: DefaultsConfig{
			Provider:    "anthropic",
			Model:       "sonnet",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Fallback: FallbackConfig{
			Provider: "openai",
			Model:    "gpt4",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}

	for key, p := range c.Providers {
		if len(p.Models) == 0 {
			return fmt.Errorf("provider %s: at least one model is required", key)
		}
		if p.Endpoint != "" {
			if _, err := url.ParseRequestURI(p.Endpoint); err != nil {
				return fmt.Errorf("provider %s: invalid endpoint: %w", key, err)
			}
		}
	}

	def, ok := c.Providers[c.Defaults.Provider]
	if !ok {
		return fmt.Errorf("default provider %s is not configured", c.Defaults.Provider)
	}
	if c.Defaults.Model != "" {
		if _, ok := def.Models[c.Defaults.Model]; !ok {
			return fmt.Errorf("default model %s is not configured under provider %s", c.Defaults.Model, c.Defaults.Provider)
		}
	}

	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Defaults.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}

	if c.Fallback.Provider != "" {
		fb, ok := c.Providers[c.Fallback.Provider]
		if !ok {
			return fmt.Errorf("fallback provider %s is not configured", c.Fallback.Provider)
		}
		if c.Fallback.Model != "" {
			if _, ok := fb.Models[c.Fallback.Model]; !ok {
				return fmt.Errorf("fallback model %s is not configured under provider %s", c.Fallback.Model, c.Fallback.Provider)
			}
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
