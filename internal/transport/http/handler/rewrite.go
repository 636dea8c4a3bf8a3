package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ngo-connect-api/internal/application/rewrite"
	"github.com/ngo-connect-api/internal/domain"
)

// RewriteHandler handles the AI rewrite endpoint.
type RewriteHandler struct {
	svc rewrite.Service
}

func NewRewriteHandler(svc rewrite.Service) *RewriteHandler { return &RewriteHandler{svc: svc} }

func (h *RewriteHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	// The composer must always get a JSON answer, even on a panic deep in
	// response normalization.
	defer func() {
		if rec := recover(); rec != nil {
			writeError(w, http.StatusInternalServerError, "Failed to rewrite content")
		}
	}()

	var req domain.RewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Rewrite(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
