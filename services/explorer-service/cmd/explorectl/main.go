// Command explorectl runs the data explorer analyses against local CSV and Excel files
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/edulearn/platform/libs/logger"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "explorectl",
		Short: "Explore CSV and Excel datasets from the command line",
		Long: `explorectl loads a local CSV or .xlsx file and prints summary statistics,
quality reports, chart figures, markdown reports or converted exports.
Nothing is uploaded or stored.`,
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

	rootCmd.AddCommand(newSummaryCommand())
	rootCmd.AddCommand(newQualityCommand())
	rootCmd.AddCommand(newChartCommand())
	rootCmd.AddCommand(newRecommendCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}

// loadFrame reads and parses a dataset file
func loadFrame(path string) (*dataset.Frame, error) {
	if err := dataset.CheckFormat(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	frame, err := dataset.Load(filepath.Base(path), file)
	if err != nil {
		return nil, err
	}
	logger.Logger.Debug("dataset loaded",
		zap.String("file", path),
		zap.Int("rows", frame.Len()),
		zap.Int("columns", len(frame.Columns)),
	)
	return frame, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path, or to w when path is empty
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Logger.Info("output written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
