package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/techmentor/pkg/logger"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Gemini is a Completer backed by the Gemini API.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger

	client *genai.Client
}

// NewGemini builds the client. A missing key is not an error here: the
// client is returned unconfigured and every Complete call fails with
// ErrNotConfigured without touching the network.
func NewGemini(ctx context.Context, opts ...Option) (*Gemini, error) {
	g := &Gemini{
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Get()
	}
	g.logger = g.logger.Named("completion")

	if !g.Configured() {
		g.logger.Warn(ctx, "no completion credential configured; live analyses will fail")
		return g, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Configured reports whether a credential is present.
func (g *Gemini) Configured() bool {
	return strings.TrimSpace(g.apiKey) != ""
}

// Model returns the model identifier sent with each call.
func (g *Gemini) Model() string { return g.model }

// Complete sends parts as a single user turn and returns the model text.
func (g *Gemini) Complete(ctx context.Context, parts ...Part) (string, error) {
	if !g.Configured() || g.client == nil {
		return "", ErrNotConfigured
	}

	content := genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	g.logger.Debug(ctx, "completion received",
		logger.String("model", g.model),
		logger.Int("parts", len(parts)),
		logger.Int("chars", len(text)),
	)
	return text, nil
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}
