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

// ProgressService is the interface that wraps methods for learning progress
type ProgressService interface {
	// CompleteLesson marks a lesson done, updates course progress, points, streak and achievements
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	// "timeSpent" is the study time in minutes.
	//
	// Returns the effect of the completion, or "not enrolled" / "lesson not found" errors.
	CompleteLesson(ctx context.Context, userID, courseID, lessonID string, timeSpent int) (*models.CompleteLessonResult, error)
	// UpdateDailyActivity adds study minutes to today and updates the streak
	UpdateDailyActivity(ctx context.Context, userID string, minutes int) (*models.UserStats, error)
	// GetUserProgress aggregates the progress of a user
	GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	// GetDetailedProgress adds the last 30 days of activity and the recent completions
	GetDetailedProgress(ctx context.Context, userID string) (*models.DetailedProgress, error)
	// GetLearningAnalytics computes study patterns, performance and engagement
	GetLearningAnalytics(ctx context.Context, userID string) (*models.LearningAnalytics, error)
	// GetUserAchievements lists earned achievements
	GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
	// GetAchievementDefinitions lists every achievement
	GetAchievementDefinitions() []models.Achievement
}

// ProgressHandler handles HTTP requests for learning progress
type ProgressHandler struct {
	handlers.BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{courseId}/lessons/{lessonId}/complete", h.CompleteLesson)
		r.Post("/me/activity", h.UpdateDailyActivity)
		r.Get("/me/progress", h.GetUserProgress)
		r.Get("/me/progress/detailed", h.GetDetailedProgress)
		r.Get("/me/analytics", h.GetLearningAnalytics)
		r.Get("/me/achievements", h.GetUserAchievements)
		r.Get("/achievements", h.GetAchievementDefinitions)
	})
}

// CompleteLesson handles POST /courses/{courseId}/lessons/{lessonId}/complete
// @Summary Complete a lesson
// @Description Marks the lesson done. Completing an already completed lesson changes nothing.
// @Tags learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Param request body models.CompleteLessonRequest false "Time spent"
// @Success 200 {object} models.CompleteLessonResult
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /courses/{courseId}/lessons/{lessonId}/complete [post]
func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CompleteLessonRequest
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &req); err != nil {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to complete lesson")
		return
	}

	result, err := h.service.CompleteLesson(r.Context(), userID,
		chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"), req.TimeSpentMinutes)
	if err != nil {
		h.RespondServiceError(w, err, "failed to complete lesson")
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}

// UpdateDailyActivity handles POST /me/activity
// @Summary Record study time
// @Tags learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ActivityRequest true "Minutes studied"
// @Success 200 {object} models.UserStats
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /me/activity [post]
func (h *ProgressHandler) UpdateDailyActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.ActivityRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to record activity")
		return
	}

	stats, err := h.service.UpdateDailyActivity(r.Context(), userID, req.Minutes)
	if err != nil {
		h.RespondServiceError(w, err, "failed to record activity")
		return
	}
	h.RespondJSON(w, http.StatusOK, stats)
}

// GetUserProgress handles GET /me/progress
// @Summary Get my progress
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserProgress
// @Router /me/progress [get]
func (h *ProgressHandler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetUserProgress(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get progress")
		return
	}
	h.RespondJSON(w, http.StatusOK, progress)
}

// GetDetailedProgress handles GET /me/progress/detailed
// @Summary Get my detailed progress
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.DetailedProgress
// @Router /me/progress/detailed [get]
func (h *ProgressHandler) GetDetailedProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetDetailedProgress(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get detailed progress")
		return
	}
	h.RespondJSON(w, http.StatusOK, progress)
}

// GetLearningAnalytics handles GET /me/analytics
// @Summary Get my learning analytics
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.LearningAnalytics
// @Router /me/analytics [get]
func (h *ProgressHandler) GetLearningAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	analytics, err := h.service.GetLearningAnalytics(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get analytics")
		return
	}
	h.RespondJSON(w, http.StatusOK, analytics)
}

// GetUserAchievements handles GET /me/achievements
// @Summary Get my achievements
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.UserAchievement
// @Router /me/achievements [get]
func (h *ProgressHandler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	achievements, err := h.service.GetUserAchievements(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get achievements")
		return
	}
	if achievements == nil {
		achievements = []models.UserAchievement{}
	}
	h.RespondJSON(w, http.StatusOK, achievements)
}

// GetAchievementDefinitions handles GET /achievements
// @Summary List achievements
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Achievement
// @Router /achievements [get]
func (h *ProgressHandler) GetAchievementDefinitions(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.GetAchievementDefinitions())
}
