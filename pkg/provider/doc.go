// Package provider holds the remote completion backends: a static
// registry of configured providers and a completion client with a
// sticky primary-to-secondary fallback.
//
// Invariants:
// - The registry is read-only after construction.
// - Resolve never panics; configuration gaps surface as *ConfigError.
// - A fallback permanently moves the session's selection; it is not
//   reverted after the call that triggered it.
package provider
