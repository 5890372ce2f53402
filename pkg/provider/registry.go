package provider

import (
	"fmt"
	"sort"
)

// Provider is one configured completion backend.
type Provider struct {
	Endpoint   string
	Credential string
	// Models maps short model keys to the remote model names sent on
	// the wire.
	Models map[string]string
}

// Selection is the mutable (provider, model) pair owned by the session.
// The model key is only meaningful under the selected provider.
type Selection struct {
	Provider string
	Model    string
}

// Resolved is a selection joined with its provider configuration,
// ready for a remote call.
type Resolved struct {
	Provider    string
	Endpoint    string
	Credential  string
	Model       string
	RemoteModel string
}

// ConfigError reports a configuration gap found at the point of use. It
// is reported to the user as a warning, never as a crash.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// Registry is the static catalog of providers plus the designated
// fallback order. It is built once at startup and never mutated.
type Registry struct {
	providers map[string]Provider

	// Primary and Secondary name the fallback pair; FallbackModel is
	// the model key selected when the client degrades to Secondary.
	Primary       string
	Secondary     string
	FallbackModel string
}

// NewRegistry creates a registry over the given providers.
func NewRegistry(providers map[string]Provider, primary, secondary, fallbackModel string) *Registry {
	return &Registry{
		providers:     providers,
		Primary:       primary,
		Secondary:     secondary,
		FallbackModel: fallbackModel,
	}
}

// Has reports whether key names a configured provider.
func (r *Registry) Has(key string) bool {
	_, ok := r.providers[key]
	return ok
}

// Keys returns the configured provider keys in lexicographic order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for key := range r.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Models returns the model keys configured under provider, sorted, or
// nil if the provider is unknown.
func (r *Registry) Models(provider string) []string {
	p, ok := r.providers[provider]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(p.Models))
	for key := range p.Models {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasModel reports whether the model key exists under provider.
func (r *Registry) HasModel(provider, model string) bool {
	p, ok := r.providers[provider]
	if !ok {
		return false
	}
	_, ok = p.Models[model]
	return ok
}

// DefaultModel returns the default model key for provider: the first
// key in sorted order. Deterministic so provider switches always land
// on the same model.
func (r *Registry) DefaultModel(provider string) string {
	models := r.Models(provider)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// HasCredential reports whether provider exists and has a credential.
func (r *Registry) HasCredential(provider string) bool {
	p, ok := r.providers[provider]
	return ok && p.Credential != ""
}

// RemoteModel returns the remote model name for a model key, or "".
func (r *Registry) RemoteModel(provider, model string) string {
	p, ok := r.providers[provider]
	if !ok {
		return ""
	}
	return p.Models[model]
}

// Resolve joins a (provider, model) selection with its configuration.
// It fails with a *ConfigError when the provider or model key is
// unknown, or when the provider has no credential.
func (r *Registry) Resolve(provider, model string) (Resolved, error) {
	p, ok := r.providers[provider]
	if !ok {
		return Resolved{}, &ConfigError{Provider: provider, Reason: "unknown provider"}
	}
	remote, ok := p.Models[model]
	if !ok {
		return Resolved{}, &ConfigError{Provider: provider, Reason: fmt.Sprintf("no model %q configured", model)}
	}
	if p.Credential == "" {
		return Resolved{}, &ConfigError{Provider: provider, Reason: "no credential configured"}
	}
	return Resolved{
		Provider:    provider,
		Endpoint:    p.Endpoint,
		Credential:  p.Credential,
		Model:       model,
		RemoteModel: remote,
	}, nil
}
