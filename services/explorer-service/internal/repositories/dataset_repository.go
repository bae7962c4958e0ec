package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// datasetRepository implements dataset metadata operations
type datasetRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB, logger *zap.Logger) *datasetRepository {
	return &datasetRepository{db: db, logger: logger}
}

// Create inserts dataset metadata
func (r *datasetRepository) Create(ctx context.Context, ds *models.Dataset) error {
	query := `
		INSERT INTO datasets (id, name, original_filename, stored_path, row_count, column_count, size_bytes, uploaded_at)
		VALUES (:id, :name, :original_filename, :stored_path, :row_count, :column_count, :size_bytes, :uploaded_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, ds); err != nil {
		r.logger.Error("failed to create dataset", zap.Error(err), zap.String("datasetId", ds.ID))
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves dataset metadata by ID
func (r *datasetRepository) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	query := `
		SELECT id, name, original_filename, stored_path, row_count, column_count, size_bytes, uploaded_at
		FROM datasets
		WHERE id = ?
	`
	var ds models.Dataset
	err := r.db.GetContext(ctx, &ds, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset not found")
	}
	if err != nil {
		r.logger.Error("failed to get dataset by id", zap.Error(err), zap.String("datasetId", id))
		return nil, fmt.Errorf("failed to get dataset by id: %w", err)
	}
	return &ds, nil
}

// List returns every dataset, newest first
func (r *datasetRepository) List(ctx context.Context) ([]models.Dataset, error) {
	query := `
		SELECT id, name, original_filename, stored_path, row_count, column_count, size_bytes, uploaded_at
		FROM datasets
		ORDER BY uploaded_at DESC, id
	`
	datasets := make([]models.Dataset, 0)
	if err := r.db.SelectContext(ctx, &datasets, query); err != nil {
		r.logger.Error("failed to list datasets", zap.Error(err))
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

// DeleteByID deletes dataset metadata. Sessions of the dataset are removed by cascade.
func (r *datasetRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete dataset", zap.Error(err), zap.String("datasetId", id))
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err), zap.String("datasetId", id))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("dataset not found")
	}
	return nil
}
