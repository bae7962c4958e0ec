package handlers

import (
	"context"
	"net/http"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for admin operations
type AdminService interface {
	// Method GetUsersStats aggregates the user base: totals, active users, learning styles and registrations per day.
	//
	// If some error occurs, the error will be returned together with nil.
	GetUsersStats(ctx context.Context) (*models.UsersStats, error)
	// Method GetUserContact returns the minimal user view used by background workers.
	//
	// "userID" parameter is used to specify the user ID.
	//
	// If user not found, the "user not found" error will be returned together with nil.
	GetUserContact(ctx context.Context, userID string) (*models.UserContact, error)
}

// AdminHandler handles admin and internal HTTP requests
type AdminHandler struct {
	handlers.BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  handlers.BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers admin routes. The router must already require the admin role.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/users/stats", h.GetUsersStats)
}

// RegisterInternalRoutes registers service-to-service routes. The router must already check the API key.
func (h *AdminHandler) RegisterInternalRoutes(r chi.Router) {
	r.Get("/internal/users/{userId}/contact", h.GetUserContact)
}

// GetUsersStats handles GET /admin/users/stats
// @Summary Get user statistics
// @Description Total and active users, learning style distribution and registrations by date
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UsersStats
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/stats [get]
func (h *AdminHandler) GetUsersStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetUsersStats(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to get users stats")
		return
	}
	h.RespondJSON(w, http.StatusOK, stats)
}

// GetUserContact handles GET /internal/users/{userId}/contact
// @Summary Get user contact
// @Description Internal endpoint used by the worker to e-mail a user
// @Tags internal
// @Produce json
// @Param X-API-Key header string true "Service API key"
// @Param userId path string true "User ID"
// @Success 200 {object} models.UserContact
// @Failure 401 {object} map[string]string "Invalid or missing API key"
// @Failure 404 {object} map[string]string "User not found"
// @Router /internal/users/{userId}/contact [get]
func (h *AdminHandler) GetUserContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.adminService.GetUserContact(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get user contact")
		return
	}
	h.RespondJSON(w, http.StatusOK, contact)
}
