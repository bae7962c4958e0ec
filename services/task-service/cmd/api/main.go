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
	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/logger"
	loggerMiddleware "github.com/edulearn/platform/libs/logger/middleware"
	"github.com/edulearn/platform/libs/metrics"
	sharedMiddleware "github.com/edulearn/platform/libs/middlewares"
	_ "github.com/edulearn/platform/services/task-service/docs"
	"github.com/edulearn/platform/services/task-service/internal/handlers"
	"github.com/edulearn/platform/services/task-service/internal/repositories"
	"github.com/edulearn/platform/services/task-service/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title EduLearn Task API
// @version 1.0
// @description Admin API for e-mail templates, task logs and background jobs

// @host localhost:8082
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service-to-service authentication
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

	logger.Logger.Info("Starting Task Service API")

	if cfg.APIKey == "" {
		logger.Logger.Fatal("API_KEY is required for the task admin API")
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, "task_schema_migrations", database.MigrationsDir("migrations")); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	m := metrics.NewMetrics()

	// Initialize repositories
	emailTemplateRepo := repositories.NewEmailTemplateRepository(db, logger.Logger)
	taskLogRepo := repositories.NewTaskLogRepository(db, logger.Logger)

	// Initialize services
	emailTemplateService := services.NewEmailTemplateService(emailTemplateRepo, logger.Logger)
	taskLogService := services.NewTaskLogService(taskLogRepo, logger.Logger)
	taskService := services.NewTaskService(asynqClient, cfg.Schedule, logger.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)
	adminHandler := handlers.NewAdminHandler(emailTemplateService, taskLogService, logger.Logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger.Logger)

	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(m.Middleware("task-service"))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB

	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Schedule.APIPort)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		adminHandler.RegisterRoutes(r)
		taskHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Schedule.APIPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Schedule.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
