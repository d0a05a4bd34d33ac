package completion

import (
	"net/http"

	"github.com/okian/techmentor/pkg/logger"
)

// Option applies a configuration option to the Gemini client.
type Option func(*Gemini)

// WithAPIKey sets the credential. An empty key leaves the client unconfigured.
func WithAPIKey(key string) Option {
	return func(g *Gemini) {
		g.apiKey = key
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(g *Gemini) {
		g.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gemini) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gemini) {
		if l != nil {
			g.logger = l
		}
	}
}
