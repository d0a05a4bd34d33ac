// Package site serves the HTML interface: a sidebar form and two tabs, one
// for the career analysis and one for the post draft.
package site

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/okian/techmentor/internal/adapters/http/api"
	"github.com/okian/techmentor/internal/adapters/http/request"
	service "github.com/okian/techmentor/internal/app"
	"github.com/okian/techmentor/internal/domain/analysis"
	"github.com/okian/techmentor/internal/domain/scoring"
	"github.com/okian/techmentor/pkg/logger"
)

// Error constants
var (
	ErrTemplate = errors.New("site template failed")
	ErrRender   = errors.New("site render failed")
)

// Page title and tab identifiers.
const (
	title       = "Tech Event Mentor"
	tabAnalysis = "analysis"
	tabPost     = "post"
)

// Dependencies required by the site handlers.
type Dependencies interface {
	Analyze(ctx context.Context, req service.AnalyzeRequest) analysis.Outcome
	DraftPost(ctx context.Context, sessionID, reflection string, offline bool) (string, error)
	Latest(ctx context.Context, sessionID string) (analysis.Result, bool)
	HasCredential() bool
	Offline() bool
}

// Handler renders the page for each action.
type Handler struct {
	deps      Dependencies
	tmpl      *template.Template
	presenter *scoring.Presenter
	cookie    string
	maxBytes  int64
	logger    logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithSessionCookie sets the session cookie name.
func WithSessionCookie(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookie = name
		}
	}
}

// WithMaxUploadBytes bounds poster uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithPresenter sets the result presenter.
func WithPresenter(p *scoring.Presenter) Option {
	return func(h *Handler) {
		if p != nil {
			h.presenter = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler parses the embedded templates and returns a Handler.
func NewHandler(deps Dependencies, opts ...Option) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, errors.Join(ErrTemplate, err)
	}
	h := &Handler{
		deps:      deps,
		tmpl:      tmpl,
		presenter: scoring.NewPresenter(),
		cookie:    request.DefaultSessionCookie,
		maxBytes:  10 << 20,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	h.logger = h.logger.Named("site")
	return h, nil
}

// Register attaches the page routes and static assets to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.HandleIndex, "index"))
	mux.HandleFunc("POST /analyze", api.MetricsMiddleware(h.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /post", api.MetricsMiddleware(h.HandlePost, "post"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// view is the data the page template renders.
type view struct {
	Title         string
	Tab           string
	Organizer     string
	Message       string
	Offline       bool
	ForcedOffline bool
	Credential    bool
	Error         string
	Card          *scoring.Card
	Reflection    string
	Draft         string
}

func (h *Handler) newView(ctx context.Context, sessionID, tab string) view {
	v := view{
		Title:         title,
		Tab:           tab,
		Offline:       h.deps.Offline(),
		ForcedOffline: h.deps.Offline(),
		Credential:    h.deps.HasCredential(),
	}
	if r, ok := h.deps.Latest(ctx, sessionID); ok {
		card := h.presenter.Card(r)
		v.Card = &card
	}
	return v
}

// HandleIndex renders the page with the session's stored analysis.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := request.Session(w, r, h.cookie)
	tab := tabAnalysis
	if r.URL.Query().Get("tab") == tabPost {
		tab = tabPost
	}
	v := h.newView(r.Context(), sessionID, tab)
	// Demo mode chosen for the analysis carries over to the post tab.
	v.Offline = v.Offline || request.Checked(r.URL.Query().Get(request.FieldOffline))
	h.render(w, r, v)
}

// HandleAnalyze runs the analysis and renders the result or the error inline.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := request.Session(w, r, h.cookie)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))

	req, err := request.ParseAnalyze(r, sessionID, h.maxBytes)
	if err != nil {
		v := h.newView(ctx, sessionID, tabAnalysis)
		v.Organizer, v.Message = req.Organizer, req.Message
		v.Offline = v.Offline || req.Offline
		v.Error = err.Error()
		h.render(w, r, v)
		return
	}

	out := h.deps.Analyze(ctx, req)

	// Stored result is reloaded so a failure shows the previous analysis.
	v := h.newView(ctx, sessionID, tabAnalysis)
	v.Organizer, v.Message = req.Organizer, req.Message
	v.Offline = v.Offline || req.Offline
	if e, failed := out.Failure(); failed {
		v.Error = e.Message
	}
	h.render(w, r, v)
}

// HandlePost drafts a post for the stored event.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := request.Session(w, r, h.cookie)

	v := h.newView(ctx, sessionID, tabPost)
	if err := request.ParseForm(r, h.maxBytes); err != nil {
		v.Error = err.Error()
		h.render(w, r, v)
		return
	}
	v.Reflection = r.FormValue(request.FieldReflection)
	offline := request.Checked(r.FormValue(request.FieldOffline))
	v.Offline = v.Offline || offline

	draft, err := h.deps.DraftPost(ctx, sessionID, v.Reflection, offline)
	if err != nil {
		v.Error = err.Error()
	} else {
		v.Draft = draft
	}
	h.render(w, r, v)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, v view) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html.tmpl", v); err != nil {
		h.logger.Error(r.Context(), "failed to render page",
			logger.String("tab", v.Tab),
			logger.Error(errors.Join(ErrRender, err)),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
