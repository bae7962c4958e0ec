// Command learnctl manages the learn-service database and previews quizzes
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/libs/database"
	"github.com/edulearn/platform/libs/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const migrationsTable = "learn_schema_migrations"

var migrationsDir string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "learnctl",
		Short: "Administer the EduLearn learn service",
		Long: `learnctl runs migrations, seeds the course catalog and inspects users.
Database settings come from the same environment variables as the service.
Output is JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return logger.Init(level)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "Migrations directory")

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newQuizCommand())

	return rootCmd
}

// openDatabase loads the config and connects to MySQL
func openDatabase() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	logger.Logger.Debug("connected to database", zap.String("host", cfg.Database.Host))
	return cfg, db, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
