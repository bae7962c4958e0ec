package main

import (
	"fmt"
	"time"

	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
	"github.com/edulearn/platform/services/explorer-service/internal/services"
	"github.com/spf13/cobra"
)

func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>",
		Short: "Print summary statistics for the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dataset.Summary(frame))
		},
	}
}

func newQualityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quality <file>",
		Short: "Print missing values, duplicates, types and outliers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dataset.Quality(frame))
		},
	}
}

func newChartCommand() *cobra.Command {
	var (
		cfg    charts.Config
		format string
		out    string
	)
	chartCmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Build a chart as a standalone HTML page or figure JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Struct(&cfg); err != nil {
				return err
			}
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}
			fig, err := charts.Build(frame, cfg)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case services.FormatHTML:
				data, err = export.ChartHTML(fig, chartTitle(cfg))
			case services.FormatJSON:
				data, err = export.ChartJSON(fig)
			default:
				return fmt.Errorf("unsupported chart export format %q", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	chartCmd.Flags().StringVar(&cfg.Type, "type", "", "Chart type, e.g. \"Scatter Plot\" or \"Histogram\"")
	chartCmd.Flags().StringVar(&cfg.X, "x", "", "X axis column")
	chartCmd.Flags().StringVar(&cfg.Y, "y", "", "Y axis column")
	chartCmd.Flags().StringVar(&cfg.Color, "color", "", "Column to group by color")
	chartCmd.Flags().StringVar(&cfg.Title, "title", "", "Chart title")
	chartCmd.Flags().IntVar(&cfg.Height, "height", 0, "Chart height in pixels (100-2000)")
	chartCmd.Flags().StringVar(&format, "format", services.FormatHTML, "html or json")
	chartCmd.Flags().StringVar(&out, "out", "", "Output file, stdout when empty")
	_ = chartCmd.MarkFlagRequired("type")
	return chartCmd
}

func chartTitle(cfg charts.Config) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return cfg.Type
}

func newRecommendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <file>",
		Short: "List chart types suited to the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), charts.Recommend(frame))
		},
	}
}

func newReportCommand() *cobra.Command {
	var out string
	reportCmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write a markdown analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}
			report := export.Report(export.ReportInput{
				Frame:       frame,
				Insights:    services.Insights(frame),
				GeneratedAt: time.Now(),
			})
			return writeOutput(cmd.OutOrStdout(), out, []byte(report))
		},
	}
	reportCmd.Flags().StringVar(&out, "out", "", "Output file, stdout when empty")
	return reportCmd
}

func newExportCommand() *cobra.Command {
	var (
		format string
		out    string
	)
	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a dataset to CSV or Excel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadFrame(args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case services.FormatCSV:
				data, err = export.CSV(frame)
			case services.FormatXLSX:
				data, err = export.Excel(frame)
			default:
				return fmt.Errorf("unsupported export format %q", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", services.FormatCSV, "csv or xlsx")
	exportCmd.Flags().StringVar(&out, "out", "", "Output file, stdout when empty")
	return exportCmd
}
