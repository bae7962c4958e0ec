package handlers

import (
	"context"
	"net/http"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CourseService is the interface that wraps methods for catalog and enrollment operations
type CourseService interface {
	// GetCourse retrieves a course with its lessons
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the course or the "course not found" error.
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	// GetCategories returns the sorted unique course categories
	GetCategories(ctx context.Context) ([]string, error)
	// SearchCourses filters the catalog and sorts it by rating
	//
	// "ctx" is the context for the request.
	// "search" holds the query, category and difficulty filters. Empty or "All" disables a filter.
	//
	// Returns the matching courses and an error if any.
	SearchCourses(ctx context.Context, search models.CourseSearch) ([]models.Course, error)
	// GetCourseLessons returns the lessons of a course ordered by position
	GetCourseLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
	// GetCourseStats summarizes a course
	GetCourseStats(ctx context.Context, courseID string) (*models.CourseStats, error)
	// Enroll enrolls a user in a course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the newly earned achievement IDs, or "course not found" / "already enrolled" errors.
	Enroll(ctx context.Context, userID, courseID string) ([]string, error)
	// ViewCourse records that a user opened a course
	ViewCourse(ctx context.Context, userID, courseID string) error
	// GetUserEnrollments returns the course IDs and enrollment records of a user
	GetUserEnrollments(ctx context.Context, userID string) (*models.UserEnrollments, error)
}

// CourseHandler handles HTTP requests for the catalog and enrollments
type CourseHandler struct {
	handlers.BaseHandler
	service CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	// flat patterns: progress routes share the /courses prefix
	r.Get("/courses", h.SearchCourses)
	r.Get("/courses/categories", h.GetCategories)
	r.Get("/courses/{courseId}", h.GetCourse)
	r.Get("/courses/{courseId}/lessons", h.GetCourseLessons)
	r.Get("/courses/{courseId}/stats", h.GetCourseStats)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{courseId}/enroll", h.Enroll)
		r.Post("/courses/{courseId}/view", h.ViewCourse)
		r.Get("/me/enrollments", h.GetUserEnrollments)
	})
}

// SearchCourses handles GET /courses
// @Summary Search courses
// @Description Filter the catalog by free-text query, category and difficulty. Results are sorted by rating.
// @Tags courses
// @Produce json
// @Param query query string false "Case-insensitive match on title, description or tags"
// @Param category query string false "Category, or All"
// @Param difficulty query string false "Beginner, Intermediate, Advanced, or All"
// @Success 200 {array} models.Course
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) SearchCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := h.service.SearchCourses(r.Context(), models.CourseSearch{
		Query:      q.Get("query"),
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
	})
	if err != nil {
		h.RespondServiceError(w, err, "failed to search courses")
		return
	}
	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCategories handles GET /courses/categories
// @Summary List categories
// @Tags courses
// @Produce json
// @Success 200 {array} string
// @Router /courses/categories [get]
func (h *CourseHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to get categories")
		return
	}
	h.RespondJSON(w, http.StatusOK, categories)
}

// GetCourse handles GET /courses/{courseId}
// @Summary Get course
// @Description Get a course with its lessons
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} map[string]string "Course not found"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.GetCourse(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get course")
		return
	}
	h.RespondJSON(w, http.StatusOK, course)
}

// GetCourseLessons handles GET /courses/{courseId}/lessons
// @Summary Get course lessons
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {array} models.Lesson
// @Failure 404 {object} map[string]string "Course not found"
// @Router /courses/{courseId}/lessons [get]
func (h *CourseHandler) GetCourseLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.GetCourseLessons(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get lessons")
		return
	}
	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetCourseStats handles GET /courses/{courseId}/stats
// @Summary Get course statistics
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} models.CourseStats
// @Failure 404 {object} map[string]string "Course not found"
// @Router /courses/{courseId}/stats [get]
func (h *CourseHandler) GetCourseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetCourseStats(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get course stats")
		return
	}
	h.RespondJSON(w, http.StatusOK, stats)
}

// EnrollResponse is returned after a successful enrollment
type EnrollResponse struct {
	CourseID        string   `json:"courseId"`
	NewAchievements []string `json:"newAchievements"`
}

// Enroll handles POST /courses/{courseId}/enroll
// @Summary Enroll in a course
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 201 {object} EnrollResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Already enrolled"
// @Router /courses/{courseId}/enroll [post]
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	courseID := chi.URLParam(r, "courseId")
	awarded, err := h.service.Enroll(r.Context(), userID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to enroll")
		return
	}
	h.RespondJSON(w, http.StatusCreated, EnrollResponse{CourseID: courseID, NewAchievements: awarded})
}

// ViewCourse handles POST /courses/{courseId}/view
// @Summary Record a course view
// @Description Records a view interaction used by recommendations
// @Tags learning
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 204
// @Failure 404 {object} map[string]string "Course not found"
// @Router /courses/{courseId}/view [post]
func (h *CourseHandler) ViewCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.service.ViewCourse(r.Context(), userID, chi.URLParam(r, "courseId")); err != nil {
		h.RespondServiceError(w, err, "failed to record view")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserEnrollments handles GET /me/enrollments
// @Summary Get my enrollments
// @Tags learning
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserEnrollments
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /me/enrollments [get]
func (h *CourseHandler) GetUserEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	enrollments, err := h.service.GetUserEnrollments(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get enrollments")
		return
	}
	h.RespondJSON(w, http.StatusOK, enrollments)
}
