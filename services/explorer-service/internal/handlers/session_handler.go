package handlers

import (
	"context"
	"net/http"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps methods for saved sessions
type SessionService interface {
	// CreateSession saves filters and chart configurations for a dataset
	CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// ShareSession encodes the session state into a shareable URL
	ShareSession(ctx context.Context, id string) (*models.ShareLink, error)
	// DecodeShared reads the state carried by a share token
	DecodeShared(token string) (*export.SessionState, error)
}

// SessionHandler handles HTTP requests for sessions
type SessionHandler struct {
	handlers.BaseHandler
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/shared", h.Shared)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/share", h.Share)
	})
}

// Create handles POST /sessions
// @Summary Save a session
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateSessionRequest true "Session"
// @Success 201 {object} models.Session
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 404 {object} map[string]string "Dataset not found"
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to save session")
		return
	}

	session, err := h.service.CreateSession(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to save session")
		return
	}
	h.RespondJSON(w, http.StatusCreated, session)
}

// Get handles GET /sessions/{id}
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get session")
		return
	}
	h.RespondJSON(w, http.StatusOK, session)
}

// Share handles GET /sessions/{id}/share
// @Summary Get a share link
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.ShareLink
// @Router /sessions/{id}/share [get]
func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ShareSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to share session")
		return
	}
	h.RespondJSON(w, http.StatusOK, link)
}

// Shared handles GET /sessions/shared
// @Summary Decode a share link
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param session query string true "Share token"
// @Success 200 {object} export.SessionState
// @Failure 400 {object} map[string]string "Invalid token"
// @Router /sessions/shared [get]
func (h *SessionHandler) Shared(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.DecodeShared(r.URL.Query().Get("session"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to decode session")
		return
	}
	h.RespondJSON(w, http.StatusOK, state)
}
