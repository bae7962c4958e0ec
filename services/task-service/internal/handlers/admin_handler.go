package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EmailAdminTemplateService is the interface that wraps methods for email template business logic
type EmailAdminTemplateService interface {
	GetAll(ctx context.Context, page, count int, search string) ([]models.EmailTemplateListItem, error)
	GetBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error)
	Update(ctx context.Context, slug string, req *models.UpdateEmailTemplateRequest) error
}

// AdminTaskLogService is the interface that wraps methods for task log business logic
type AdminTaskLogService interface {
	GetAll(ctx context.Context, page, count int, taskType, status string) ([]models.TaskLogListItem, error)
	GetByID(ctx context.Context, id int) (*models.TaskLog, error)
}

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	handlers.BaseHandler
	emailTemplateService EmailAdminTemplateService
	taskLogService       AdminTaskLogService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	emailTemplateService EmailAdminTemplateService,
	taskLogService AdminTaskLogService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:          handlers.BaseHandler{Logger: logger},
		emailTemplateService: emailTemplateService,
		taskLogService:       taskLogService,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		// Email Templates
		r.Get("/email-templates", h.GetEmailTemplatesList)
		r.Get("/email-templates/{slug}", h.GetEmailTemplate)
		r.Patch("/email-templates/{slug}", h.UpdateEmailTemplate)

		// Task Logs
		r.Get("/task-logs", h.GetTaskLogsList)
		r.Get("/task-logs/{id}", h.GetTaskLog)
	})
}

// pagination reads page and count query parameters, ignoring invalid values
func pagination(r *http.Request) (page, count int) {
	page, count = 1, 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if c, err := strconv.Atoi(r.URL.Query().Get("count")); err == nil && c > 0 {
		count = c
	}
	return page, count
}

// GetEmailTemplatesList handles GET /admin/email-templates
// @Summary Get list of email templates
// @Description Get paginated list of email templates with optional search filter
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20)"
// @Param search query string false "Search in template slug"
// @Success 200 {array} models.EmailTemplateListItem "List of email templates"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/email-templates [get]
func (h *AdminHandler) GetEmailTemplatesList(w http.ResponseWriter, r *http.Request) {
	page, count := pagination(r)

	templates, err := h.emailTemplateService.GetAll(r.Context(), page, count, r.URL.Query().Get("search"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get email templates")
		return
	}

	h.RespondJSON(w, http.StatusOK, templates)
}

// GetEmailTemplate handles GET /admin/email-templates/{slug}
// @Summary Get email template by slug
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Email template slug"
// @Success 200 {object} models.EmailTemplate "Email template details"
// @Failure 404 {object} map[string]string "Email template not found"
// @Router /admin/email-templates/{slug} [get]
func (h *AdminHandler) GetEmailTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.emailTemplateService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get email template")
		return
	}

	h.RespondJSON(w, http.StatusOK, template)
}

// UpdateEmailTemplate handles PATCH /admin/email-templates/{slug}
// @Summary Update email template
// @Description Change the subject and/or body. Placeholders {{1}}, {{2}}, ... are filled in order.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Email template slug"
// @Param template body models.UpdateEmailTemplateRequest true "Fields to update"
// @Success 200 {object} map[string]string "Email template updated"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Email template not found"
// @Router /admin/email-templates/{slug} [patch]
func (h *AdminHandler) UpdateEmailTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateEmailTemplateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to update email template")
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.emailTemplateService.Update(r.Context(), slug, &req); err != nil {
		h.RespondServiceError(w, err, "failed to update email template")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "email template updated", "slug": slug})
}

// GetTaskLogsList handles GET /admin/task-logs
// @Summary Get list of task logs
// @Description Newest first, optionally filtered by task type and status
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20)"
// @Param type query string false "Task type, e.g. email:achievement"
// @Param status query string false "Completed or Failed"
// @Success 200 {array} models.TaskLogListItem "List of task logs"
// @Router /admin/task-logs [get]
func (h *AdminHandler) GetTaskLogsList(w http.ResponseWriter, r *http.Request) {
	page, count := pagination(r)
	query := r.URL.Query()

	logs, err := h.taskLogService.GetAll(r.Context(), page, count, strings.TrimSpace(query.Get("type")), query.Get("status"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get task logs")
		return
	}

	h.RespondJSON(w, http.StatusOK, logs)
}

// GetTaskLog handles GET /admin/task-logs/{id}
// @Summary Get task log by ID
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Task log ID"
// @Success 200 {object} models.TaskLog "Task log details"
// @Failure 400 {object} map[string]string "Invalid task log ID"
// @Failure 404 {object} map[string]string "Task log not found"
// @Router /admin/task-logs/{id} [get]
func (h *AdminHandler) GetTaskLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid task log ID")
		return
	}

	log, err := h.taskLogService.GetByID(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get task log")
		return
	}

	h.RespondJSON(w, http.StatusOK, log)
}
