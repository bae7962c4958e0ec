package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// sessionRow is the stored form of a session, with filters and charts as JSON text
type sessionRow struct {
	ID          string    `db:"id"`
	DatasetID   string    `db:"dataset_id"`
	Name        string    `db:"name"`
	FiltersJSON string    `db:"filters_json"`
	ChartsJSON  string    `db:"charts_json"`
	CreatedAt   time.Time `db:"created_at"`
}

// sessionRepository implements saved session operations
type sessionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{db: db, logger: logger}
}

// Create inserts a session
func (r *sessionRepository) Create(ctx context.Context, s *models.Session) error {
	filters, err := json.Marshal(s.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	chartConfigs, err := json.Marshal(s.Charts)
	if err != nil {
		return fmt.Errorf("failed to encode charts: %w", err)
	}

	row := sessionRow{
		ID:          s.ID,
		DatasetID:   s.DatasetID,
		Name:        s.Name,
		FiltersJSON: string(filters),
		ChartsJSON:  string(chartConfigs),
		CreatedAt:   s.CreatedAt,
	}
	query := `
		INSERT INTO sessions (id, dataset_id, name, filters_json, charts_json, created_at)
		VALUES (:id, :dataset_id, :name, :filters_json, :charts_json, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("failed to create session", zap.Error(err), zap.String("sessionId", s.ID))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, dataset_id, name, filters_json, charts_json, created_at
		FROM sessions
		WHERE id = ?
	`
	var row sessionRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		r.logger.Error("failed to get session by id", zap.Error(err), zap.String("sessionId", id))
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	s := &models.Session{
		ID:        row.ID,
		DatasetID: row.DatasetID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.FiltersJSON), &s.Filters); err != nil {
		r.logger.Error("failed to decode session filters", zap.Error(err), zap.String("sessionId", id))
		return nil, fmt.Errorf("failed to decode session filters: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ChartsJSON), &s.Charts); err != nil {
		r.logger.Error("failed to decode session charts", zap.Error(err), zap.String("sessionId", id))
		return nil, fmt.Errorf("failed to decode session charts: %w", err)
	}
	return s, nil
}
