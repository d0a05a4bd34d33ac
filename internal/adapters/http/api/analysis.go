package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/techmentor/internal/adapters/completion"
	"github.com/okian/techmentor/internal/adapters/http/request"
	"github.com/okian/techmentor/internal/adapters/poster"
)

// AnalysisHandler handles analysis requests.
type AnalysisHandler struct {
	deps     Dependencies
	cookie   string
	maxBytes int64
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Dependencies, cookie string, maxBytes int64) *AnalysisHandler {
	return &AnalysisHandler{deps: deps, cookie: cookie, maxBytes: maxBytes}
}

// HandleAnalyze handles POST /api/analyze requests. The body is the same
// multipart form the HTML page submits.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sessionID := request.Session(w, r, h.cookie)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))

	req, err := request.ParseAnalyze(r, sessionID, h.maxBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, poster.ErrTooLarge) || errors.Is(err, poster.ErrTooManyPixels) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	out := h.deps.Analyze(r.Context(), req)
	if e, failed := out.Failure(); failed {
		writeJSON(w, failureStatus(e.Message), out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleLatest handles GET /api/analysis requests.
func (h *AnalysisHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.analysis"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sessionID := request.Session(w, r, h.cookie)
	result, ok := h.deps.Latest(r.Context(), sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNoAnalysisYet))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// failureStatus maps an analysis failure to a status code. Outcome errors
// only carry a message, so the missing credential is matched on it.
func failureStatus(msg string) int {
	if strings.HasPrefix(msg, completion.ErrNotConfigured.Error()) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// errorStatus maps a DraftPost error to a status code and code string.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, completion.ErrNotConfigured):
		return http.StatusServiceUnavailable, "not_configured"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
