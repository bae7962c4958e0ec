package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecommendationService is the interface that wraps methods for recommendations
type RecommendationService interface {
	// GetPersonalizedRecommendations returns up to 5 scored courses the user is not enrolled in
	GetPersonalizedRecommendations(ctx context.Context, userID string) (*models.RecommendationSet, error)
	// GetLearningPath orders courses matching a skill by difficulty
	GetLearningPath(ctx context.Context, targetSkill string) ([]models.LearningPathStep, error)
	// GetAdaptiveSuggestions suggests pace, difficulty and review topics for a course
	GetAdaptiveSuggestions(ctx context.Context, userID, courseID string) (*models.AdaptiveSuggestions, error)
	// AnalyzeLearningEffectiveness estimates velocity and preferred content
	AnalyzeLearningEffectiveness(ctx context.Context, userID string) (*models.LearningEffectiveness, error)
}

// CourseMatcher scores the catalog against interests and a difficulty
type CourseMatcher interface {
	GetRecommendedCourses(ctx context.Context, interests []string, difficulty string, exclude []string) ([]models.ScoredCourse, error)
	GetUserEnrollments(ctx context.Context, userID string) (*models.UserEnrollments, error)
}

// PreferencesReader reads the profile holding the user's preferences
type PreferencesReader interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// RecommendationHandler handles HTTP requests for recommendations
type RecommendationHandler struct {
	handlers.BaseHandler
	service  RecommendationService
	courses  CourseMatcher
	profiles PreferencesReader
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(svc RecommendationService, courses CourseMatcher, profiles PreferencesReader, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
		courses:     courses,
		profiles:    profiles,
	}
}

// RegisterRoutes registers all recommendation handler routes
func (h *RecommendationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me/recommendations", h.GetPersonalizedRecommendations)
		r.Get("/me/recommended-courses", h.GetRecommendedCourses)
		r.Get("/me/learning-path", h.GetLearningPath)
		r.Get("/me/adaptive-suggestions", h.GetAdaptiveSuggestions)
		r.Get("/me/learning-effectiveness", h.AnalyzeLearningEffectiveness)
	})
}

// GetPersonalizedRecommendations handles GET /me/recommendations
// @Summary Get personalized recommendations
// @Description Top 5 courses scored against preferences, interaction history and rating
// @Tags recommendations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.RecommendationSet
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /me/recommendations [get]
func (h *RecommendationHandler) GetPersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	set, err := h.service.GetPersonalizedRecommendations(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get recommendations")
		return
	}
	h.RespondJSON(w, http.StatusOK, set)
}

// GetRecommendedCourses handles GET /me/recommended-courses
// @Summary Get catalog matches
// @Description Courses matching the user's interests and difficulty preference, excluding enrolled ones
// @Tags recommendations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.ScoredCourse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /me/recommended-courses [get]
func (h *RecommendationHandler) GetRecommendedCourses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get recommended courses")
		return
	}
	enrollments, err := h.courses.GetUserEnrollments(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get recommended courses")
		return
	}

	difficulty := user.Preferences.DifficultyPreference
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	scored, err := h.courses.GetRecommendedCourses(r.Context(), user.Preferences.Interests, difficulty, enrollments.CourseIDs)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get recommended courses")
		return
	}
	h.RespondJSON(w, http.StatusOK, scored)
}

// GetLearningPath handles GET /me/learning-path
// @Summary Get a learning path
// @Description Courses matching a skill ordered Beginner, Intermediate, Advanced
// @Tags recommendations
// @Produce json
// @Security ApiKeyAuth
// @Param skill query string true "Target skill"
// @Success 200 {array} models.LearningPathStep
// @Failure 400 {object} map[string]string "Skill is required"
// @Router /me/learning-path [get]
func (h *RecommendationHandler) GetLearningPath(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(&h.BaseHandler, w, r); !ok {
		return
	}

	path, err := h.service.GetLearningPath(r.Context(), r.URL.Query().Get("skill"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to build learning path")
		return
	}
	h.RespondJSON(w, http.StatusOK, path)
}

// GetAdaptiveSuggestions handles GET /me/adaptive-suggestions
// @Summary Get adaptive suggestions for a course
// @Tags recommendations
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string true "Course ID"
// @Success 200 {object} models.AdaptiveSuggestions
// @Failure 400 {object} map[string]string "Course ID is required"
// @Failure 404 {object} map[string]string "Course not found"
// @Router /me/adaptive-suggestions [get]
func (h *RecommendationHandler) GetAdaptiveSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	courseID := strings.TrimSpace(r.URL.Query().Get("courseId"))
	if courseID == "" {
		h.RespondError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	suggestions, err := h.service.GetAdaptiveSuggestions(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get adaptive suggestions")
		return
	}
	h.RespondJSON(w, http.StatusOK, suggestions)
}

// AnalyzeLearningEffectiveness handles GET /me/learning-effectiveness
// @Summary Analyze learning effectiveness
// @Tags recommendations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.LearningEffectiveness
// @Router /me/learning-effectiveness [get]
func (h *RecommendationHandler) AnalyzeLearningEffectiveness(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeLearningEffectiveness(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to analyze learning effectiveness")
		return
	}
	h.RespondJSON(w, http.StatusOK, analysis)
}
