package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaskService is the interface that wraps methods for triggering tasks
type TaskService interface {
	// Trigger enqueues a maintenance task for immediate processing
	//
	// "ctx" parameter is used to specify the context.
	// "taskType" is one of email:daily_reminder, progress:daily_reset or auth:token_cleanup.
	//
	// If the type is unknown or enqueueing fails, the error will be returned.
	Trigger(ctx context.Context, taskType string) (*models.EnqueuedTask, error)
	// Schedule returns the next n runs of every recurring job
	Schedule(n int) ([]models.ScheduleEntry, error)
}

// TaskHandler handles task trigger requests
type TaskHandler struct {
	handlers.BaseHandler
	taskService TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		taskService: taskService,
	}
}

// RegisterRoutes registers all task handler routes
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/tasks/{type}", h.TriggerTask)
	r.Get("/admin/schedule", h.GetSchedule)
}

// TriggerTask handles POST /admin/tasks/{type}
// @Summary Trigger a maintenance task
// @Description Enqueue email:daily_reminder, progress:daily_reset or auth:token_cleanup now
// @Tags tasks
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "Task type"
// @Success 202 {object} models.EnqueuedTask "Task enqueued"
// @Failure 400 {object} map[string]string "Unsupported task type"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/tasks/{type} [post]
func (h *TaskHandler) TriggerTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.Trigger(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to trigger task")
		return
	}

	h.RespondJSON(w, http.StatusAccepted, task)
}

// GetSchedule handles GET /admin/schedule
// @Summary Get the recurring job schedule
// @Tags tasks
// @Produce json
// @Security ApiKeyAuth
// @Param n query int false "Upcoming runs per job (default: 3, max: 20)"
// @Success 200 {array} models.ScheduleEntry "Jobs with their next runs"
// @Failure 400 {object} map[string]string "Invalid n"
// @Router /admin/schedule [get]
func (h *TaskHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	n := 3
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "n must be an integer")
			return
		}
		n = parsed
	}

	schedule, err := h.taskService.Schedule(n)
	if err != nil {
		h.RespondServiceError(w, err, "failed to build schedule")
		return
	}

	h.RespondJSON(w, http.StatusOK, schedule)
}
