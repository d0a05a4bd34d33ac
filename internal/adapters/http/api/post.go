package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/techmentor/internal/adapters/http/request"
	service "github.com/okian/techmentor/internal/app"
)

// postRequest mirrors the OpenAPI schema for POST /api/post.
type postRequest struct {
	Reflection string `json:"reflection"`
	Offline    bool   `json:"offline"`
}

type postResponse struct {
	Post string `json:"post"`
}

// PostHandler handles post draft requests.
type PostHandler struct {
	deps   Dependencies
	cookie string
}

// NewPostHandler creates a new post handler.
func NewPostHandler(deps Dependencies, cookie string) *PostHandler {
	return &PostHandler{deps: deps, cookie: cookie}
}

// HandlePost handles POST /api/post requests.
func (h *PostHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sessionID := request.Session(w, r, h.cookie)

	var req postRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	text, err := h.deps.DraftPost(r.Context(), sessionID, req.Reflection, req.Offline)
	if err != nil {
		if errors.Is(err, service.ErrNoAnalysis) {
			writeError(w, http.StatusConflict, "no_analysis", WrapKind(op, ErrNoAnalysisYet, err))
			return
		}
		status, code := errorStatus(err)
		writeError(w, status, code, WrapKind(op, ErrUpstream, err))
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: text})
}
