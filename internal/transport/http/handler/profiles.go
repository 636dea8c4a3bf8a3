package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ngo-connect-api/internal/application/profile"
	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/transport/http/middleware"
)

// ProfileHandler handles individual and NGO profile endpoints.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) GetIndividual(w http.ResponseWriter, r *http.Request) {
	ind, err := h.svc.GetIndividual(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (h *ProfileHandler) UpdateIndividual(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID || claims.Kind != domain.KindIndividual {
		writeError(w, http.StatusForbidden, "cannot update another profile")
		return
	}
	var req domain.UpdateIndividualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ind, err := h.svc.UpdateIndividual(r.Context(), targetID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (h *ProfileHandler) GetNGO(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetNGO(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *ProfileHandler) UpdateNGO(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID || claims.Kind != domain.KindNGO {
		writeError(w, http.StatusForbidden, "cannot update another profile")
		return
	}
	var req domain.UpdateNGORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := h.svc.UpdateNGO(r.Context(), targetID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
