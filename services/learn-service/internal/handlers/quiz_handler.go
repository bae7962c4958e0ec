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

// QuizService is the interface that wraps methods for quiz operations
type QuizService interface {
	// GenerateQuiz builds a quiz, from the LLM provider when configured and the template bank otherwise, and stores it
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the quiz owner.
	// "req" holds topic, difficulty, number of questions and quiz type.
	//
	// Returns the stored quiz and an error if any.
	GenerateQuiz(ctx context.Context, userID string, req models.GenerateQuizRequest) (*models.Quiz, error)
	// GenerateAdaptiveQuiz picks the difficulty from the user's past results on the topic
	GenerateAdaptiveQuiz(ctx context.Context, userID, topic string) (*models.Quiz, error)
	// GetQuiz returns a quiz owned by the user, or the "quiz not found" error
	GetQuiz(ctx context.Context, userID, quizID string) (*models.Quiz, error)
	// SubmitQuiz grades answers keyed by question index and stores the attempt
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the quiz owner.
	// "quizID" is the ID of the quiz.
	// "answers" maps question indexes to answers. Missing answers count as wrong.
	//
	// Returns the score with per-question feedback and an error if any.
	SubmitQuiz(ctx context.Context, userID, quizID string, answers map[int]string) (*models.SubmitQuizResponse, error)
	// GetQuizHistory returns the user's attempts, oldest first
	GetQuizHistory(ctx context.Context, userID string) ([]models.QuizResult, error)
	// GetQuizAnalytics summarizes the user's attempts
	GetQuizAnalytics(ctx context.Context, userID string) (*models.QuizAnalytics, error)
}

// QuizHandler handles HTTP requests for quizzes
type QuizHandler struct {
	handlers.BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/quizzes", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.GenerateQuiz)
		r.Post("/adaptive", h.GenerateAdaptiveQuiz)
		r.Get("/{quizId}", h.GetQuiz)
		r.Post("/{quizId}/submit", h.SubmitQuiz)
	})
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me/quizzes/history", h.GetQuizHistory)
		r.Get("/me/quizzes/analytics", h.GetQuizAnalytics)
	})
}

// GenerateQuiz handles POST /quizzes
// @Summary Generate a quiz
// @Description Generate a quiz on a topic. Questions come from the configured LLM provider, or the template bank when it is unavailable.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.GenerateQuizRequest true "Quiz parameters"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /quizzes [post]
func (h *QuizHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.GenerateQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to generate quiz")
		return
	}

	quiz, err := h.service.GenerateQuiz(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to generate quiz")
		return
	}
	h.RespondJSON(w, http.StatusCreated, quiz)
}

// GenerateAdaptiveQuiz handles POST /quizzes/adaptive
// @Summary Generate an adaptive quiz
// @Description Generate a 10 question mixed quiz whose difficulty follows past results on the topic
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.AdaptiveQuizRequest true "Topic"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /quizzes/adaptive [post]
func (h *QuizHandler) GenerateAdaptiveQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.AdaptiveQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to generate quiz")
		return
	}

	quiz, err := h.service.GenerateAdaptiveQuiz(r.Context(), userID, req.Topic)
	if err != nil {
		h.RespondServiceError(w, err, "failed to generate quiz")
		return
	}
	h.RespondJSON(w, http.StatusCreated, quiz)
}

// GetQuiz handles GET /quizzes/{quizId}
// @Summary Get a quiz
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} map[string]string "Quiz not found"
// @Router /quizzes/{quizId} [get]
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), userID, chi.URLParam(r, "quizId"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get quiz")
		return
	}
	h.RespondJSON(w, http.StatusOK, quiz)
}

// SubmitQuiz handles POST /quizzes/{quizId}/submit
// @Summary Submit quiz answers
// @Description Grade answers keyed by question index. Scores of 90% or more count towards the quiz_master achievement.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "Quiz ID"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 200 {object} models.SubmitQuizResponse
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Router /quizzes/{quizId}/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to submit quiz")
		return
	}

	resp, err := h.service.SubmitQuiz(r.Context(), userID, chi.URLParam(r, "quizId"), req.Answers)
	if err != nil {
		h.RespondServiceError(w, err, "failed to submit quiz")
		return
	}
	h.RespondJSON(w, http.StatusOK, resp)
}

// GetQuizHistory handles GET /me/quizzes/history
// @Summary Get my quiz history
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.QuizResult
// @Router /me/quizzes/history [get]
func (h *QuizHandler) GetQuizHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	history, err := h.service.GetQuizHistory(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get quiz history")
		return
	}
	h.RespondJSON(w, http.StatusOK, history)
}

// GetQuizAnalytics handles GET /me/quizzes/analytics
// @Summary Get my quiz analytics
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.QuizAnalytics
// @Router /me/quizzes/analytics [get]
func (h *QuizHandler) GetQuizAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	analytics, err := h.service.GetQuizAnalytics(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get quiz analytics")
		return
	}
	h.RespondJSON(w, http.StatusOK, analytics)
}
