package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no providers",
			mutate:  func(c *Config) { c.Providers = nil },
			wantErr: "at least one provider",
		},
		{
			name: "provider without models",
			mutate: func(c *Config) {
				c.Providers["anthropic"] = ProviderConfig{}
			},
			wantErr: "at least one model",
		},
		{
			name: "bad endpoint",
			mutate: func(c *Config) {
				p := c.Providers["openai"]
				p.Endpoint = "::not-a-url"
				c.Providers["openai"] = p
			},
			wantErr: "invalid endpoint",
		},
		{
			name:    "unknown default provider",
			mutate:  func(c *Config) { c.Defaults.Provider = "gemini" },
			wantErr: "default provider",
		},
		{
			name:    "unknown default model",
			mutate:  func(c *Config) { c.Defaults.Model = "gpt4" },
			wantErr: "default model",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Defaults.Temperature = 3.0 },
			wantErr: "temperature",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Config) { c.Defaults.MaxTokens = -1 },
			wantErr: "max_tokens",
		},
		{
			name:    "unknown fallback provider",
			mutate:  func(c *Config) { c.Fallback.Provider = "gemini" },
			wantErr: "fallback provider",
		},
		{
			name:    "unknown fallback model",
			mutate:  func(c *Config) { c.Fallback.Model = "sonnet" },
			wantErr: "fallback model",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_String(t *testing.T) {
	s := DefaultConfig().String()
	assert.Contains(t, s, "anthropic")
	assert.Contains(t, s, "providers")
}
