package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/edulearn/platform/libs/auth/middleware"
	"github.com/edulearn/platform/libs/auth/service"
	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/handlers"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/edulearn/platform/services/learn-service/internal/repositories"
	"github.com/edulearn/platform/services/learn-service/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
)

// tables in reverse dependency order
var tables = []string{
	"quiz_results", "quizzes", "study_activity", "user_interactions", "user_achievements",
	"user_progress", "enrollments", "lessons", "courses", "user_stats", "user_tokens", "users",
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if cfg.Database.Host == "" {
		fmt.Println("TEST_DB_HOST is not set, skipping integration tests")
		os.Exit(0)
	}

	testDB, err = database.Connect(cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := database.Migrate(testDB, "learn_schema_migrations", "../../migrations"); err != nil {
		panic(fmt.Sprintf("Failed to migrate test database: %v", err))
	}

	testRouter = setupTestRouter(cfg, testDB, testLogger)

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

// setupTestRouter wires the real repositories and services without Redis, NATS or an LLM
func setupTestRouter(cfg *config.Config, db *sql.DB, logger *zap.Logger) chi.Router {
	m := metrics.NewMetrics()
	tokens := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	publisher := events.NoopPublisher{}

	userRepo := repositories.NewUserRepository(db, logger)
	tokenRepo := repositories.NewUserTokenRepository(db, logger)
	statsRepo := repositories.NewUserStatsRepository(db, logger)
	courseRepo := repositories.NewCourseRepository(db, logger)
	enrollmentRepo := repositories.NewEnrollmentRepository(db, logger)
	progressRepo := repositories.NewProgressRepository(db, logger)
	quizResultRepo := repositories.NewQuizResultRepository(db, logger)

	progressSvc := services.NewProgressService(statsRepo, progressRepo, repositories.NewAchievementRepository(db, logger),
		enrollmentRepo, quizResultRepo, courseRepo, publisher, m, logger)
	recommendationSvc := services.NewRecommendationService(userRepo, courseRepo, enrollmentRepo,
		repositories.NewInteractionRepository(db, logger), progressRepo, nil, cfg.Recommendation.CacheTTL, m, logger)
	progressSvc.SetInteractionRecorder(recommendationSvc)
	courseSvc := services.NewCourseService(courseRepo, enrollmentRepo, progressSvc, recommendationSvc, m, logger)
	quizSvc := services.NewQuizService(repositories.NewQuizRepository(db, logger), quizResultRepo, progressSvc, nil, m, logger)
	authSvc := services.NewAuthService(userRepo, tokenRepo, statsRepo, tokens, publisher, logger)
	profileSvc := services.NewProfileService(userRepo, tokenRepo, statsRepo, recommendationSvc, logger)

	auth := middleware.AuthMiddleware(tokens)
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handlers.NewAuthHandler(authSvc, logger, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry, false).RegisterRoutes(r)
		handlers.NewProfileHandler(profileSvc, logger).RegisterRoutes(r, auth)
		handlers.NewCourseHandler(courseSvc, logger).RegisterRoutes(r, auth)
		handlers.NewProgressHandler(progressSvc, logger).RegisterRoutes(r, auth)
		handlers.NewRecommendationHandler(recommendationSvc, courseSvc, profileSvc, logger).RegisterRoutes(r, auth)
		handlers.NewQuizHandler(quizSvc, logger).RegisterRoutes(r, auth)
	})

	if _, err := courseSvc.SeedCatalog(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to seed catalog: %v", err))
	}
	return r
}

// resetUsers removes every user-owned row, keeping the seeded catalog
func resetUsers(t *testing.T) {
	t.Helper()
	for _, table := range tables {
		if table == "lessons" || table == "courses" {
			continue
		}
		_, err := testDB.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to clear %s", table)
	}
}

func call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, username string) models.AuthResponse {
	t.Helper()
	w := call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"preferences": map[string]any{
			"difficultyPreference": "Beginner",
			"interests":            []string{"Technology"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func firstCourse(t *testing.T) models.Course {
	t.Helper()
	w := call(t, http.MethodGet, "/api/v1/courses?query=python&difficulty=Beginner", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var courses []models.Course
	require.NoError(t, json.NewDecoder(w.Body).Decode(&courses))
	require.NotEmpty(t, courses)

	w = call(t, http.MethodGet, "/api/v1/courses/"+courses[0].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var course models.Course
	require.NoError(t, json.NewDecoder(w.Body).Decode(&course))
	require.NotEmpty(t, course.Lessons)
	return course
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	resetUsers(t)

	auth := register(t, "ada")
	assert.NotEmpty(t, auth.AccessToken)

	w := call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "ada", "email": "other@example.com", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ada", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ada", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": auth.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": auth.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a rotated refresh token cannot be reused")
}

func TestIntegration_EnrollAndComplete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	resetUsers(t)

	token := register(t, "grace").AccessToken
	course := firstCourse(t)

	w := call(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons/"+course.Lessons[0].ID+"/complete", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/enroll", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), models.AchievementFirstCourse)

	w = call(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/enroll", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	for i, lesson := range course.Lessons {
		w = call(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons/"+lesson.ID+"/complete", token,
			map[string]int{"timeSpentMinutes": 10})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result models.CompleteLessonResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.True(t, result.Completed)
		assert.Equal(t, i == len(course.Lessons)-1, result.CourseCompleted)
	}

	w = call(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons/"+course.Lessons[0].ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed":false`)

	w = call(t, http.MethodGet, "/api/v1/me/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress models.UserProgress
	require.NoError(t, json.NewDecoder(w.Body).Decode(&progress))
	assert.Equal(t, []string{course.ID}, progress.CompletedCourses)
	assert.Equal(t, len(course.Lessons), progress.CompletedLessons)
	assert.InDelta(t, 100, progress.CourseProgress[course.ID], 0.001)
	wantPoints := 50 + len(course.Lessons)*models.LessonPoints + models.CourseCompletionPoints + 100
	assert.Equal(t, wantPoints, progress.TotalPoints)

	w = call(t, http.MethodGet, "/api/v1/me/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), course.ID)
}

func TestIntegration_QuizRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	resetUsers(t)

	token := register(t, "linus").AccessToken

	w := call(t, http.MethodPost, "/api/v1/quizzes", token, models.GenerateQuizRequest{
		Topic: "Python", Difficulty: models.DifficultyBeginner, NumQuestions: 2, QuizType: models.QuizTypeTrueFalse,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz models.Quiz
	require.NoError(t, json.NewDecoder(w.Body).Decode(&quiz))
	assert.Equal(t, models.GeneratedByTemplate, quiz.GeneratedBy)

	answers := map[int]string{}
	for i, q := range quiz.Questions {
		answers[i] = q.CorrectAnswer
	}
	w = call(t, http.MethodPost, "/api/v1/quizzes/"+quiz.ID+"/submit", token, models.SubmitQuizRequest{Answers: answers})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted models.SubmitQuizResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&submitted))
	assert.InDelta(t, 100, submitted.Score.Percentage, 0.001)

	w = call(t, http.MethodGet, "/api/v1/me/quizzes/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analytics models.QuizAnalytics
	require.NoError(t, json.NewDecoder(w.Body).Decode(&analytics))
	assert.Equal(t, 1, analytics.TotalQuizzesTaken)
	assert.Equal(t, models.TrendInsufficientData, analytics.ImprovementTrend)
}
