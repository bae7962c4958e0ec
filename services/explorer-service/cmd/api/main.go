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
	_ "github.com/edulearn/platform/services/explorer-service/docs"
	"github.com/edulearn/platform/services/explorer-service/internal/handlers"
	"github.com/edulearn/platform/services/explorer-service/internal/repositories"
	"github.com/edulearn/platform/services/explorer-service/internal/services"
	"github.com/edulearn/platform/services/explorer-service/internal/storage"
	"github.com/edulearn/platform/services/explorer-service/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title EduLearn Data Explorer API
// @version 1.0
// @description API for uploading datasets, computing statistics, building charts and exporting results

// @host localhost:8081
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.LoadExplorer()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting EduLearn Data Explorer")

	if cfg.APIKey == "" {
		logger.Logger.Fatal("API_KEY must be set for the explorer")
	}

	db, err := store.Open(cfg.Explorer.DBPath)
	if err != nil {
		logger.Logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	if err := store.Migrate(db, database.MigrationsDir("migrations")); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	m := metrics.NewMetrics()
	maxUploadBytes := int64(cfg.Explorer.MaxUploadMB) << 20

	// Initialize repositories
	datasetRepo := repositories.NewDatasetRepository(db, logger.Logger)
	sessionRepo := repositories.NewSessionRepository(db, logger.Logger)

	// Initialize services
	datasetService := services.NewDatasetService(datasetRepo, storage.NewLocalStorage(cfg.Explorer.StoragePath), cfg.Explorer.PreviewLimit, m, logger.Logger)
	sessionService := services.NewSessionService(sessionRepo, datasetService, cfg.Explorer.BaseURL, logger.Logger)

	// Initialize handlers
	datasetHandler := handlers.NewDatasetHandler(datasetService, maxUploadBytes, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	r := chi.NewRouter()

	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(m.Middleware("explorer-service"))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	// Uploads carry the file plus multipart framing
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxUploadBytes + 1<<20))

	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(cfg.APIKey))
		datasetHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Explorer.ReadTimeout,
		WriteTimeout: cfg.Explorer.WriteTimeout,
		IdleTimeout:  cfg.Explorer.IdleTimeout,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

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
