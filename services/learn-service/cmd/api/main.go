package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edulearn/platform/libs/auth/middleware"
	"github.com/edulearn/platform/libs/auth/service"
	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/logger"
	loggerMiddleware "github.com/edulearn/platform/libs/logger/middleware"
	"github.com/edulearn/platform/libs/metrics"
	sharedMiddleware "github.com/edulearn/platform/libs/middlewares"
	_ "github.com/edulearn/platform/services/learn-service/docs"
	"github.com/edulearn/platform/services/learn-service/internal/cache"
	"github.com/edulearn/platform/services/learn-service/internal/handlers"
	"github.com/edulearn/platform/services/learn-service/internal/llm"
	"github.com/edulearn/platform/services/learn-service/internal/repositories"
	"github.com/edulearn/platform/services/learn-service/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// migrationsTable keeps learn-service migrations apart from other services sharing the schema
const migrationsTable = "learn_schema_migrations"

// @title EduLearn Learn API
// @version 1.0
// @description API for courses, progress tracking, recommendations and quizzes

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting EduLearn Learn Service")

	// Connect to database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.Migrate(db, migrationsTable, database.MigrationsDir("migrations")); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	m := metrics.NewMetrics()
	ctx := context.Background()

	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Event publisher, disabled without NATS_URL
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		bus, err := events.Connect(cfg.NATS.URL, "learn-service", logger.Logger)
		if err != nil {
			logger.Logger.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			publisher = bus
		}
	}

	// Recommendation cache, disabled when Redis is unreachable
	var recommendationCache services.RecommendationCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn("Redis unavailable, recommendation cache disabled", zap.Error(err))
	} else {
		recommendationCache = cache.NewRecommendationCache(redisClient)
	}

	// Quiz question provider, templates only when none is configured
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	if provider != nil {
		logger.Logger.Info("LLM provider enabled", zap.String("provider", provider.Name()), zap.String("model", provider.ModelID()))
		provider = llm.WithInstrumentation(provider, cfg.LLM.Timeout, m, logger.Logger)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db, logger.Logger)
	userStatsRepo := repositories.NewUserStatsRepository(db, logger.Logger)
	courseRepo := repositories.NewCourseRepository(db, logger.Logger)
	enrollmentRepo := repositories.NewEnrollmentRepository(db, logger.Logger)
	progressRepo := repositories.NewProgressRepository(db, logger.Logger)
	achievementRepo := repositories.NewAchievementRepository(db, logger.Logger)
	interactionRepo := repositories.NewInteractionRepository(db, logger.Logger)
	quizRepo := repositories.NewQuizRepository(db, logger.Logger)
	quizResultRepo := repositories.NewQuizResultRepository(db, logger.Logger)

	// Initialize services
	progressService := services.NewProgressService(userStatsRepo, progressRepo, achievementRepo, enrollmentRepo, quizResultRepo, courseRepo, publisher, m, logger.Logger)
	recommendationService := services.NewRecommendationService(userRepo, courseRepo, enrollmentRepo, interactionRepo, progressRepo, recommendationCache, cfg.Recommendation.CacheTTL, m, logger.Logger)
	progressService.SetInteractionRecorder(recommendationService)
	courseService := services.NewCourseService(courseRepo, enrollmentRepo, progressService, recommendationService, m, logger.Logger)
	quizService := services.NewQuizService(quizRepo, quizResultRepo, progressService, provider, m, logger.Logger)
	authService := services.NewAuthService(userRepo, userTokenRepo, userStatsRepo, tokenGenerator, publisher, logger.Logger)
	profileService := services.NewProfileService(userRepo, userTokenRepo, userStatsRepo, recommendationService, logger.Logger)
	adminService := services.NewAdminService(userRepo)

	if seeded, err := courseService.SeedCatalog(ctx); err != nil {
		logger.Logger.Fatal("Failed to seed course catalog", zap.Error(err))
	} else if seeded > 0 {
		logger.Logger.Info("Seeded course catalog", zap.Int("courses", seeded))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry, cfg.Server.SecureCookies)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger.Logger)
	courseHandler := handlers.NewCourseHandler(courseService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, courseService, profileService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)
	adminMiddleware := middleware.RoleMiddleware(tokenGenerator, service.RoleAdmin)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(m.Middleware("learn-service"))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB

	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r, authMiddleware)
		courseHandler.RegisterRoutes(r, authMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
		recommendationHandler.RegisterRoutes(r, authMiddleware)
		quizHandler.RegisterRoutes(r, authMiddleware)
		// Register admin routes with role middleware
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
		// Register service-to-service routes with API key middleware
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			adminHandler.RegisterInternalRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
