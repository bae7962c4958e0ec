package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
	FormatJSON = "json"
)

// DatasetRepository is the interface that wraps methods for datasets table data access
type DatasetRepository interface {
	// Create inserts dataset metadata
	Create(ctx context.Context, ds *models.Dataset) error
	// GetByID returns the metadata or the "dataset not found" error
	GetByID(ctx context.Context, id string) (*models.Dataset, error)
	// List returns every dataset, newest first
	List(ctx context.Context) ([]models.Dataset, error)
	// DeleteByID removes the metadata or returns the "dataset not found" error
	DeleteByID(ctx context.Context, id string) error
}

// Storage keeps uploaded files
type Storage interface {
	// Save stores r under a generated name with the extension and returns the name and size
	Save(r io.Reader, extension string) (string, int64, error)
	// Open opens a stored file
	Open(name string) (io.ReadCloser, error)
	// Delete removes a stored file
	Delete(name string) error
}

// datasetService implements DatasetService
type datasetService struct {
	repo         DatasetRepository
	storage      Storage
	previewLimit int
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewDatasetService creates a new dataset service.
// previewLimit is the number of rows returned when a preview asks for none.
func NewDatasetService(repo DatasetRepository, storage Storage, previewLimit int, m *metrics.Metrics, logger *zap.Logger) *datasetService {
	if previewLimit <= 0 {
		previewLimit = 100
	}
	return &datasetService{
		repo:         repo,
		storage:      storage,
		previewLimit: previewLimit,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Upload parses the file to validate it, stores it and records its metadata
func (s *datasetService) Upload(ctx context.Context, filename, name string, r io.Reader) (*models.Dataset, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(filename))
	if err := dataset.CheckFormat(filename); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	frame, err := dataset.Load(filename, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	stored, size, err := s.storage.Save(bytes.NewReader(raw), ext)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	ds := &models.Dataset{
		ID:               uuid.New().String(),
		Name:             name,
		OriginalFilename: filename,
		StoredPath:       stored,
		Rows:             frame.Len(),
		Columns:          len(frame.Columns),
		Size:             size,
		UploadedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, ds); err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", stored), zap.Error(delErr))
		}
		return nil, err
	}

	s.metrics.DatasetsUploaded.WithLabelValues(strings.TrimPrefix(ext, ".")).Inc()
	s.logger.Info("dataset uploaded",
		zap.String("dataset_id", ds.ID),
		zap.Int("rows", ds.Rows),
		zap.Int("columns", ds.Columns),
	)
	return ds, nil
}

// ListDatasets returns every dataset
func (s *datasetService) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	return s.repo.List(ctx)
}

// GetDataset returns dataset metadata
func (s *datasetService) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteDataset removes the metadata, its sessions and the stored file
func (s *datasetService) DeleteDataset(ctx context.Context, id string) error {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ds.StoredPath); err != nil {
		s.logger.Warn("failed to delete dataset file", zap.String("dataset_id", id), zap.Error(err))
	}
	return nil
}

// Frame loads and parses the stored file of a dataset
func (s *datasetService) Frame(ctx context.Context, id string) (*dataset.Frame, *models.Dataset, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ds.StoredPath)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	frame, err := dataset.Load(ds.OriginalFilename, rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored dataset: %w", err)
	}
	return frame, ds, nil
}

func (s *datasetService) filtered(ctx context.Context, id string, filters []dataset.Filter) (*dataset.Frame, *models.Dataset, error) {
	frame, ds, err := s.Frame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	out, err := dataset.Apply(frame, filters)
	if err != nil {
		return nil, nil, err
	}
	return out, ds, nil
}

func (s *datasetService) preview(f *dataset.Frame, limit int) models.Preview {
	if limit <= 0 {
		limit = s.previewLimit
	}
	return models.Preview{
		Columns:   f.Columns,
		Rows:      f.Head(limit).Records(),
		TotalRows: f.Len(),
	}
}

// Preview returns the first rows of a dataset
func (s *datasetService) Preview(ctx context.Context, id string, limit int) (*models.Preview, error) {
	frame, _, err := s.Frame(ctx, id)
	if err != nil {
		return nil, err
	}
	p := s.preview(frame, limit)
	return &p, nil
}

// Summary describes the numeric columns
func (s *datasetService) Summary(ctx context.Context, id string) ([]dataset.ColumnSummary, error) {
	frame, _, err := s.Frame(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.Summary(frame), nil
}

// Quality builds the quality report
func (s *datasetService) Quality(ctx context.Context, id string) (*dataset.QualityReport, error) {
	frame, _, err := s.Frame(ctx, id)
	if err != nil {
		return nil, err
	}
	report := dataset.Quality(frame)
	return &report, nil
}

// ColumnInfo describes one column
func (s *datasetService) ColumnInfo(ctx context.Context, id, column string) (*dataset.ColumnInfo, error) {
	frame, _, err := s.Frame(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.Column(frame, column)
}

// Filter applies filters and previews the matching rows
func (s *datasetService) Filter(ctx context.Context, id string, req models.FilterRequest) (*models.FilterResult, error) {
	frame, _, err := s.filtered(ctx, id, req.Filters)
	if err != nil {
		return nil, err
	}
	return &models.FilterResult{
		Preview:     s.preview(frame, req.Limit),
		MatchedRows: frame.Len(),
	}, nil
}

// BuildChart builds a figure over the filtered rows
func (s *datasetService) BuildChart(ctx context.Context, id string, req models.ChartRequest) (*charts.Figure, error) {
	frame, _, err := s.filtered(ctx, id, req.Filters)
	if err != nil {
		return nil, err
	}
	fig, err := charts.Build(frame, req.Config)
	if err != nil {
		return nil, err
	}
	s.metrics.ChartsBuilt.WithLabelValues(req.Type).Inc()
	return fig, nil
}

// RecommendCharts suggests chart types for the dataset
func (s *datasetService) RecommendCharts(ctx context.Context, id string) ([]string, error) {
	frame, _, err := s.Frame(ctx, id)
	if err != nil {
		return nil, err
	}
	return charts.Recommend(frame), nil
}

// ExportData renders the filtered rows as csv or xlsx
func (s *datasetService) ExportData(ctx context.Context, id, format string, filters []dataset.Filter) (*models.Export, error) {
	frame, ds, err := s.filtered(ctx, id, filters)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV, "":
		data, err := export.CSV(frame)
		if err != nil {
			return nil, err
		}
		return &models.Export{Filename: exportName(ds, "csv"), ContentType: export.MimeCSV, Data: data}, nil
	case FormatXLSX:
		data, err := export.Excel(frame)
		if err != nil {
			return nil, err
		}
		return &models.Export{Filename: exportName(ds, "xlsx"), ContentType: export.MimeExcel, Data: data}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportChart renders a chart as a standalone html page or as figure json
func (s *datasetService) ExportChart(ctx context.Context, id, format string, req models.ChartRequest) (*models.Export, error) {
	if format != FormatHTML && format != FormatJSON {
		return nil, fmt.Errorf("unsupported chart export format %q", format)
	}
	fig, err := s.BuildChart(ctx, id, req)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.Type
	}
	if format == FormatHTML {
		data, err := export.ChartHTML(fig, title)
		if err != nil {
			return nil, err
		}
		return &models.Export{Filename: "chart.html", ContentType: export.MimeHTML, Data: data}, nil
	}
	data, err := export.ChartJSON(fig)
	if err != nil {
		return nil, err
	}
	return &models.Export{Filename: "chart.json", ContentType: export.MimeJSON, Data: data}, nil
}

// Report renders the markdown analysis report of the filtered rows
func (s *datasetService) Report(ctx context.Context, id string, req models.ReportRequest) (*models.Export, error) {
	frame, ds, err := s.filtered(ctx, id, req.Filters)
	if err != nil {
		return nil, err
	}
	report := export.Report(export.ReportInput{
		Frame:       frame,
		Charts:      req.Charts,
		Insights:    Insights(frame),
		GeneratedAt: s.now(),
	})
	return &models.Export{
		Filename:    exportName(ds, "md"),
		ContentType: export.MimeMD,
		Data:        []byte(report),
	}, nil
}

func exportName(ds *models.Dataset, ext string) string {
	base := strings.TrimSuffix(ds.OriginalFilename, filepath.Ext(ds.OriginalFilename))
	if base == "" {
		base = "exported_data"
	}
	return base + "." + ext
}
