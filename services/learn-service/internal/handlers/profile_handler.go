package handlers

import (
	"context"
	"net/http"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method GetProfile returns the user.
	//
	// If the user does not exist, the "user not found" error will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	// Method UpdatePreferences validates and stores learning preferences, keeping the daily goal in sync.
	//
	// "prefs" parameter replaces the stored preferences.
	//
	// If the preferences are invalid or some other error occurs, the error will be returned together with "nil" value.
	UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error)
	// Method UpdateAccount changes the email and optionally the password.
	//
	// If the current password is wrong, the "current password is invalid" error will be returned together with "nil" value.
	UpdateAccount(ctx context.Context, userID string, req *models.UpdateAccountRequest) (*models.User, error)
	// Method Deactivate disables the account and deletes its refresh tokens.
	Deactivate(ctx context.Context, userID string) error
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	handlers.BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProfile)
		r.Patch("/preferences", h.UpdatePreferences)
		r.Patch("/account", h.UpdateAccount)
		r.Delete("/", h.Deactivate)
	})
}

// GetProfile handles GET /profile
// @Summary Get profile
// @Description Get the authenticated user with preferences
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get profile")
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// UpdatePreferences handles PATCH /profile/preferences
// @Summary Update learning preferences
// @Description Replace learning style, difficulty, study time, interests and daily goal
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.Preferences true "Preferences"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /profile/preferences [patch]
func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var prefs models.Preferences
	if err := h.DecodeJSON(r, &prefs); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profileService.UpdatePreferences(r.Context(), userID, prefs)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update preferences")
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateAccount handles PATCH /profile/account
// @Summary Update account
// @Description Change the email and optionally the password. The current password is required.
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateAccountRequest true "Account data"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]any "Validation failed or wrong current password"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /profile/account [patch]
func (h *ProfileHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to update account")
		return
	}

	user, err := h.profileService.UpdateAccount(r.Context(), userID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update account")
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// Deactivate handles DELETE /profile
// @Summary Deactivate account
// @Description Deactivate the account and sign out on every device
// @Tags profile
// @Security ApiKeyAuth
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /profile [delete]
func (h *ProfileHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.profileService.Deactivate(r.Context(), userID); err != nil {
		h.RespondServiceError(w, err, "failed to deactivate account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
