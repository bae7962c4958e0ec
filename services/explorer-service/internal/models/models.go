package models

import (
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
)

// Dataset is the metadata of an uploaded file
type Dataset struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	OriginalFilename string    `json:"originalFilename" db:"original_filename"`
	StoredPath       string    `json:"-" db:"stored_path"`
	Rows             int       `json:"rows" db:"row_count"`
	Columns          int       `json:"columns" db:"column_count"`
	Size             int64     `json:"size" db:"size_bytes"`
	UploadedAt       time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// Session is a saved set of filters and charts over a dataset
type Session struct {
	ID        string           `json:"id"`
	DatasetID string           `json:"datasetId"`
	Name      string           `json:"name"`
	Filters   []dataset.Filter `json:"filters"`
	Charts    []charts.Config  `json:"charts"`
	CreatedAt time.Time        `json:"createdAt"`
}

// CreateSessionRequest is the body of POST /sessions
type CreateSessionRequest struct {
	DatasetID string           `json:"datasetId" validate:"required,notblank"`
	Name      string           `json:"name" validate:"required,notblank,max=200"`
	Filters   []dataset.Filter `json:"filters" validate:"dive"`
	Charts    []charts.Config  `json:"charts" validate:"dive"`
}

// FilterRequest is the body of POST /datasets/{id}/filter and of exports
type FilterRequest struct {
	Filters []dataset.Filter `json:"filters" validate:"dive"`
	Limit   int              `json:"limit,omitempty" validate:"omitempty,min=1"`
}

// ChartRequest is the body of chart endpoints
type ChartRequest struct {
	charts.Config
	Filters []dataset.Filter `json:"filters,omitempty" validate:"dive"`
}

// ReportRequest is the body of POST /datasets/{id}/report
type ReportRequest struct {
	Filters []dataset.Filter `json:"filters,omitempty" validate:"dive"`
	Charts  []charts.Config  `json:"charts,omitempty" validate:"dive"`
}

// Preview is the first rows of a dataset
type Preview struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	TotalRows int              `json:"totalRows"`
}

// FilterResult is a filtered preview
type FilterResult struct {
	Preview
	MatchedRows int `json:"matchedRows"`
}

// ShareLink is a shareable URL for a session with the state it encodes
type ShareLink struct {
	URL   string              `json:"url"`
	State export.SessionState `json:"state"`
}

// Export is a rendered file
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}
