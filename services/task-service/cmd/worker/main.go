package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/logger"
	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/task-service/internal/repositories"
	"github.com/edulearn/platform/services/task-service/internal/services"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	migrationsTable = "task_schema_migrations"
	queueGroup      = "task-service"
)

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

	logger.Logger.Info("Starting Task Service Worker")

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, migrationsTable, database.MigrationsDir("migrations")); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Initialize repositories
	templateRepo := repositories.NewEmailTemplateRepository(db, logger.Logger)
	learnerRepo := repositories.NewLearnerRepository(db, logger.Logger)
	taskLogRepo := repositories.NewTaskLogRepository(db, logger.Logger)

	worker := NewWorker(
		logger.Logger,
		services.NewContactClient(cfg.LearnServiceBaseURL, cfg.APIKey, nil),
		templateRepo,
		learnerRepo,
		taskLogRepo,
		services.NewSMTPMailer(cfg.SMTP),
		metrics.NewMetrics(),
		cfg.JWT.RefreshTokenExpiry,
	)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Schedule.Concurrency,
		Queues:      tasks.Queues,
		Logger:      logger.Logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	worker.Register(mux)

	if err := srv.Start(mux); err != nil {
		logger.Logger.Fatal("Failed to start worker", zap.Error(err))
	}
	logger.Logger.Info("Worker started", zap.Int("concurrency", cfg.Schedule.Concurrency))

	if cfg.NATS.URL != "" {
		bus, err := events.Connect(cfg.NATS.URL, "task-service", logger.Logger)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()

		if _, err := bus.Subscribe(events.TypeAchievementAwarded, queueGroup, achievementHandler(asynqClient, logger.Logger)); err != nil {
			logger.Logger.Fatal("Failed to subscribe to events", zap.Error(err))
		}
		logger.Logger.Info("Subscribed to achievement events", zap.String("subject", events.Subject(events.TypeAchievementAwarded)))
	} else {
		logger.Logger.Warn("NATS_URL is empty, achievement e-mails are disabled")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}
