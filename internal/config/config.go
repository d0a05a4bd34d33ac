// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and the environment on top.
// - The model credential is read here once and handed to constructors;
//   business code never reads the environment.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// Model is the generation model identifier sent with every call.
	Model string `koanf:"model"`

	// GeminiAPIKey is the completion endpoint credential. Empty means the
	// endpoint is not configured; analyses then fail with a visible error.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// Offline serves the canned demo analysis instead of calling the model.
	Offline bool `koanf:"offline"`

	// MaxUploadBytes caps the multipart body of the analyse form.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// CacheSize bounds the analysis memo. Zero or negative means unbounded.
	CacheSize int `koanf:"cache_size"`

	// SessionCookie names the cookie that keys the per-session result store.
	SessionCookie string `koanf:"session_cookie"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":8501",
		Model:          "gemini-2.0-flash",
		Offline:        false,
		MaxUploadBytes: 10 << 20,
		CacheSize:      256,
		SessionCookie:  "mentor_session",
	}
}

// HasCredential reports whether a completion credential was configured.
func (c *Config) HasCredential() bool {
	return c.GeminiAPIKey != ""
}
