package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxMultipartMemory is the part of an upload kept in memory before spilling to temp files
const maxMultipartMemory = 8 << 20

// DatasetService is the interface that wraps methods for dataset operations
type DatasetService interface {
	// Upload validates and stores a CSV or XLSX file
	//
	// "ctx" is the context for the request.
	// "filename" is the client file name; its extension selects the parser.
	// "name" is the display name, the file name without extension when empty.
	// "r" is the file content.
	//
	// Returns the stored dataset metadata and an error if any.
	Upload(ctx context.Context, filename, name string, r io.Reader) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	// DeleteDataset removes the dataset, its sessions and its file
	DeleteDataset(ctx context.Context, id string) error
	// Preview returns up to limit rows, the configured default when limit is 0
	Preview(ctx context.Context, id string, limit int) (*models.Preview, error)
	Summary(ctx context.Context, id string) ([]dataset.ColumnSummary, error)
	Quality(ctx context.Context, id string) (*dataset.QualityReport, error)
	ColumnInfo(ctx context.Context, id, column string) (*dataset.ColumnInfo, error)
	Filter(ctx context.Context, id string, req models.FilterRequest) (*models.FilterResult, error)
	BuildChart(ctx context.Context, id string, req models.ChartRequest) (*charts.Figure, error)
	RecommendCharts(ctx context.Context, id string) ([]string, error)
	ExportData(ctx context.Context, id, format string, filters []dataset.Filter) (*models.Export, error)
	ExportChart(ctx context.Context, id, format string, req models.ChartRequest) (*models.Export, error)
	Report(ctx context.Context, id string, req models.ReportRequest) (*models.Export, error)
}

// DatasetHandler handles HTTP requests for datasets, analysis, charts and exports
type DatasetHandler struct {
	handlers.BaseHandler
	service        DatasetService
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(svc DatasetService, maxUploadBytes int64, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		service:        svc,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers all dataset handler routes
func (h *DatasetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/datasets", func(r chi.Router) {
		r.Post("/", h.Upload)
		r.Get("/", h.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Get("/preview", h.Preview)
			r.Get("/summary", h.Summary)
			r.Get("/quality", h.Quality)
			r.Get("/columns/{column}", h.Column)
			r.Post("/filter", h.Filter)
			r.Post("/charts", h.BuildChart)
			r.Get("/charts/recommendations", h.RecommendCharts)
			r.Post("/charts/export", h.ExportChart)
			r.Post("/export", h.ExportData)
			r.Post("/report", h.Report)
		})
	})
}

// Upload handles POST /datasets
// @Summary Upload a dataset
// @Description Upload a CSV or Excel (.xlsx) file as multipart field "file"
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "CSV or XLSX file"
// @Param name formData string false "Display name"
// @Success 201 {object} models.Dataset
// @Failure 400 {object} map[string]string "Unsupported or empty file"
// @Failure 413 {object} map[string]string "File too large"
// @Router /datasets [post]
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			h.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUploadBytes>>20))
			return
		}
		h.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ds, err := h.service.Upload(r.Context(), header.Filename, r.FormValue("name"), file)
	if err != nil {
		h.RespondServiceError(w, err, "failed to upload dataset")
		return
	}
	h.RespondJSON(w, http.StatusCreated, ds)
}

// List handles GET /datasets
// @Summary List datasets
// @Tags datasets
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Dataset
// @Router /datasets [get]
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDatasets(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list datasets")
		return
	}
	h.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /datasets/{id}
// @Summary Get dataset metadata
// @Tags datasets
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} models.Dataset
// @Failure 404 {object} map[string]string "Dataset not found"
// @Router /datasets/{id} [get]
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.GetDataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to get dataset")
		return
	}
	h.RespondJSON(w, http.StatusOK, ds)
}

// Delete handles DELETE /datasets/{id}
// @Summary Delete a dataset
// @Tags datasets
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Success 204
// @Failure 404 {object} map[string]string "Dataset not found"
// @Router /datasets/{id} [delete]
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDataset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.RespondServiceError(w, err, "failed to delete dataset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /datasets/{id}/preview
// @Summary Preview rows
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param limit query int false "Number of rows"
// @Success 200 {object} models.Preview
// @Router /datasets/{id}/preview [get]
func (h *DatasetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	preview, err := h.service.Preview(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.RespondServiceError(w, err, "failed to preview dataset")
		return
	}
	h.RespondJSON(w, http.StatusOK, preview)
}

// Summary handles GET /datasets/{id}/summary
// @Summary Summary statistics of numeric columns
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Success 200 {array} dataset.ColumnSummary
// @Router /datasets/{id}/summary [get]
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to summarize dataset")
		return
	}
	h.RespondJSON(w, http.StatusOK, summary)
}

// Quality handles GET /datasets/{id}/quality
// @Summary Data quality report
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} dataset.QualityReport
// @Router /datasets/{id}/quality [get]
func (h *DatasetHandler) Quality(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Quality(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to build quality report")
		return
	}
	h.RespondJSON(w, http.StatusOK, report)
}

// Column handles GET /datasets/{id}/columns/{column}
// @Summary Column details
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param column path string true "Column name"
// @Success 200 {object} dataset.ColumnInfo
// @Failure 404 {object} map[string]string "Column not found"
// @Router /datasets/{id}/columns/{column} [get]
func (h *DatasetHandler) Column(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.ColumnInfo(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "column"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to describe column")
		return
	}
	h.RespondJSON(w, http.StatusOK, info)
}

// Filter handles POST /datasets/{id}/filter
// @Summary Filter rows
// @Description Apply equals, contains, range and in filters in order
// @Tags analysis
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param request body models.FilterRequest true "Filters"
// @Success 200 {object} models.FilterResult
// @Failure 400 {object} map[string]any "Invalid filter"
// @Router /datasets/{id}/filter [post]
func (h *DatasetHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	result, err := h.service.Filter(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to filter dataset")
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}

// BuildChart handles POST /datasets/{id}/charts
// @Summary Build a chart
// @Description Returns Plotly figure JSON for the filtered rows
// @Tags charts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param request body models.ChartRequest true "Chart configuration"
// @Success 200 {object} charts.Figure
// @Failure 400 {object} map[string]any "Invalid chart"
// @Router /datasets/{id}/charts [post]
func (h *DatasetHandler) BuildChart(w http.ResponseWriter, r *http.Request) {
	var req models.ChartRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	fig, err := h.service.BuildChart(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to build chart")
		return
	}
	h.RespondJSON(w, http.StatusOK, fig)
}

// RecommendCharts handles GET /datasets/{id}/charts/recommendations
// @Summary Recommend chart types
// @Tags charts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Success 200 {array} string
// @Router /datasets/{id}/charts/recommendations [get]
func (h *DatasetHandler) RecommendCharts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.RecommendCharts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, err, "failed to recommend charts")
		return
	}
	h.RespondJSON(w, http.StatusOK, recs)
}

// ExportData handles POST /datasets/{id}/export
// @Summary Export rows
// @Tags export
// @Accept json
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Param request body models.FilterRequest false "Filters"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Unsupported format"
// @Router /datasets/{id}/export [post]
func (h *DatasetHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	out, err := h.service.ExportData(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("format"), req.Filters)
	if err != nil {
		h.RespondServiceError(w, err, "failed to export dataset")
		return
	}
	h.respondFile(w, out)
}

// ExportChart handles POST /datasets/{id}/charts/export
// @Summary Export a chart
// @Tags export
// @Accept json
// @Produce html
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param format query string true "html or json"
// @Param request body models.ChartRequest true "Chart configuration"
// @Success 200 {file} file
// @Router /datasets/{id}/charts/export [post]
func (h *DatasetHandler) ExportChart(w http.ResponseWriter, r *http.Request) {
	var req models.ChartRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	out, err := h.service.ExportChart(r.Context(), chi.URLParam(r, "id"), format, req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to export chart")
		return
	}
	h.respondFile(w, out)
}

// Report handles POST /datasets/{id}/report
// @Summary Markdown analysis report
// @Tags export
// @Accept json
// @Produce plain
// @Security ApiKeyAuth
// @Param id path string true "Dataset ID"
// @Param request body models.ReportRequest false "Filters and charts to list"
// @Success 200 {file} file
// @Router /datasets/{id}/report [post]
func (h *DatasetHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	out, err := h.service.Report(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to build report")
		return
	}
	h.respondFile(w, out)
}

// decode reads and validates a JSON body. An empty body is accepted when optional.
func (h *DatasetHandler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if err := h.DecodeJSON(r, dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return false
		}
	}
	if err := validation.Struct(dst); err != nil {
		h.RespondServiceError(w, err, "invalid request")
		return false
	}
	return true
}

func (h *DatasetHandler) respondFile(w http.ResponseWriter, out *models.Export) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		h.Logger.Warn("failed to write export", zap.String("file", out.Filename), zap.Error(err))
	}
}
