// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/techmentor/internal/app"
	"github.com/okian/techmentor/internal/domain/analysis"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze runs one analysis and stores a successful result.
	Analyze(ctx context.Context, req service.AnalyzeRequest) analysis.Outcome

	// DraftPost writes a post for the stored event.
	DraftPost(ctx context.Context, sessionID, reflection string, offline bool) (string, error)

	// Latest returns the session's stored result.
	Latest(ctx context.Context, sessionID string) (analysis.Result, bool)
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analysisHandler *AnalysisHandler
	postHandler     *PostHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analysisHandler: NewAnalysisHandler(deps, cfg.cookie, cfg.maxUploadBytes),
		postHandler:     NewPostHandler(deps, cfg.cookie),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/analyze", MetricsMiddleware(s.analysisHandler.HandleAnalyze, "api_analyze"))
	mux.HandleFunc("/api/analysis", MetricsMiddleware(s.analysisHandler.HandleLatest, "api_analysis"))
	mux.HandleFunc("/api/post", MetricsMiddleware(s.postHandler.HandlePost, "api_post"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
