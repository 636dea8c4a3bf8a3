package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ngo-connect-api/internal/application/post"
	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/validate"
	"github.com/ngo-connect-api/internal/transport/http/middleware"
)

// PostHandler handles the feed: events, vlogs, likes and comments.
type PostHandler struct {
	svc post.Service
}

func NewPostHandler(svc post.Service) *PostHandler { return &PostHandler{svc: svc} }

func actor(r *http.Request) (post.Author, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return post.Author{}, false
	}
	return post.Author{ID: claims.UserID, Model: claims.Kind, Name: claims.Name}, true
}

// CreateEvent handles POST /post-events.
func (h *PostHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.PostTypeEvent)
}

// CreateVlog handles POST /post-vlogs.
func (h *PostHandler) CreateVlog(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.PostTypeVlog)
}

func (h *PostHandler) create(w http.ResponseWriter, r *http.Request, postType string) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), a, postType, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListEvents handles GET /post-events with optional author filters.
func (h *PostHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.PostTypeEvent)
}

// ListVlogs handles GET /post-vlogs with optional author filters.
func (h *PostHandler) ListVlogs(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.PostTypeVlog)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, postType string) {
	q := r.URL.Query()
	if authorID := q.Get("authorId"); authorID != "" {
		posts, err := h.svc.ListByAuthor(r.Context(), authorID, q.Get("authorModel"), postType)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	posts, err := h.svc.ListByType(r.Context(), postType)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.AddComment(r.Context(), chi.URLParam(r, "id"), a, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
