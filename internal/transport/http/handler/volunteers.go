package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ngo-connect-api/internal/application/volunteer"
	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/validate"
	"github.com/ngo-connect-api/internal/transport/http/middleware"
)

// VolunteerHandler handles event signups.
type VolunteerHandler struct {
	svc volunteer.Service
}

func NewVolunteerHandler(svc volunteer.Service) *VolunteerHandler {
	return &VolunteerHandler{svc: svc}
}

func (h *VolunteerHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterVolunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reg, err := h.svc.Register(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *VolunteerHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.ListForEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}
