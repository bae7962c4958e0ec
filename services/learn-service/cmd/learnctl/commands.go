package main

import (
	"context"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/logger"
	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/llm"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/edulearn/platform/services/learn-service/internal/repositories"
	"github.com/edulearn/platform/services/learn-service/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			dir := database.MigrationsDir(migrationsDir)
			if err := database.Migrate(db, migrationsTable, dir); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"status": "migrated", "dir": dir})
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample course catalog when the courses table is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			courseService := services.NewCourseService(
				repositories.NewCourseRepository(db, logger.Logger),
				repositories.NewEnrollmentRepository(db, logger.Logger),
				nil, nil, metrics.NewMetrics(), logger.Logger,
			)
			seeded, err := courseService.SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"coursesInserted": seeded})
		},
	}
}

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics",
	}

	statsCmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "Show user totals, learning styles and registrations by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := services.NewAdminService(repositories.NewUserRepository(db, logger.Logger)).GetUsersStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	})

	return statsCmd
}

func newQuizCommand() *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Work with quizzes",
	}

	var (
		req   models.GenerateQuizRequest
		noLLM bool
	)
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Generate a quiz without storing it",
		Long: `Generate a quiz with the configured LLM provider, or the template bank when none
is configured, unavailable or --no-llm is set. Nothing is written to the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := previewProvider(cmd.Context(), noLLM)
			quizService := services.NewQuizService(nil, nil, nil, provider, metrics.NewMetrics(), logger.Logger)

			quiz, err := quizService.PreviewQuiz(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), quiz)
		},
	}
	previewCmd.Flags().StringVar(&req.Topic, "topic", "", "Quiz topic")
	previewCmd.Flags().StringVar(&req.Difficulty, "difficulty", models.DifficultyBeginner, "Beginner, Intermediate or Advanced")
	previewCmd.Flags().IntVar(&req.NumQuestions, "count", 5, "Number of questions (1-20)")
	previewCmd.Flags().StringVar(&req.QuizType, "type", models.QuizTypeMixed, "Multiple Choice, True/False or Mixed")
	previewCmd.Flags().BoolVar(&noLLM, "no-llm", false, "Use the template bank only")
	_ = previewCmd.MarkFlagRequired("topic")

	quizCmd.AddCommand(previewCmd)
	return quizCmd
}

// previewProvider returns the configured LLM provider, or nil for templates
func previewProvider(ctx context.Context, noLLM bool) llm.Provider {
	if noLLM {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Warn("config unavailable, using templates", zap.Error(err))
		return nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		logger.Logger.Warn("LLM provider unavailable, using templates", zap.Error(err))
		return nil
	}
	if provider == nil {
		return nil
	}
	return llm.WithInstrumentation(provider, cfg.LLM.Timeout, metrics.NewMetrics(), logger.Logger)
}
