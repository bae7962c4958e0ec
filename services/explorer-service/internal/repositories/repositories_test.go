package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlite"), mock
}

var datasetColumns = []string{"id", "name", "original_filename", "stored_path", "row_count", "column_count", "size_bytes", "uploaded_at"}

func TestDatasetRepository_Create(t *testing.T) {
	uploaded := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ds := &models.Dataset{
		ID: "ds-1", Name: "Sales", OriginalFilename: "sales.csv", StoredPath: "abc.csv",
		Rows: 10, Columns: 3, Size: 120, UploadedAt: uploaded,
	}

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO datasets`).
					WithArgs("ds-1", "Sales", "sales.csv", "abc.csv", 10, 3, int64(120), uploaded).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO datasets`).WillReturnError(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setupMock(mock)

			err := NewDatasetRepository(db, zap.NewNop()).Create(context.Background(), ds)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDatasetRepository_GetByID(t *testing.T) {
	uploaded := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM datasets`).WithArgs("ds-1").
					WillReturnRows(sqlmock.NewRows(datasetColumns).
						AddRow("ds-1", "Sales", "sales.csv", "abc.csv", 10, 3, 120, uploaded))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM datasets`).WithArgs("ds-1").
					WillReturnRows(sqlmock.NewRows(datasetColumns))
			},
			wantErr: "dataset not found",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM datasets`).WithArgs("ds-1").
					WillReturnError(errors.New("locked"))
			},
			wantErr: "failed to get dataset by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setupMock(mock)

			ds, err := NewDatasetRepository(db, zap.NewNop()).GetByID(context.Background(), "ds-1")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, ds)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Sales", ds.Name)
				assert.Equal(t, 10, ds.Rows)
				assert.Equal(t, int64(120), ds.Size)
				assert.Equal(t, uploaded, ds.UploadedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDatasetRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM datasets\s+ORDER BY uploaded_at DESC`).
		WillReturnRows(sqlmock.NewRows(datasetColumns).
			AddRow("ds-2", "B", "b.csv", "b.csv", 1, 1, 1, now).
			AddRow("ds-1", "A", "a.csv", "a.csv", 1, 1, 1, now))

	list, err := NewDatasetRepository(db, zap.NewNop()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ds-2", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepository_DeleteByID(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  string
	}{
		{name: "deleted", affected: 1},
		{name: "not found", affected: 0, wantErr: "dataset not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectExec(`DELETE FROM datasets WHERE id = \?`).WithArgs("ds-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := NewDatasetRepository(db, zap.NewNop()).DeleteByID(context.Background(), "ds-1")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	session := &models.Session{
		ID:        "s-1",
		DatasetID: "ds-1",
		Name:      "North only",
		Filters:   []dataset.Filter{{Column: "region", Type: dataset.FilterEquals, Value: "North"}},
		Charts:    []charts.Config{{Type: charts.Histogram, X: "units"}},
		CreatedAt: created,
	}
	filtersJSON := `[{"column":"region","type":"equals","value":"North"}]`
	chartsJSON := `[{"type":"Histogram","x":"units"}]`

	db, mock := setupMockDB(t)
	repo := NewSessionRepository(db, zap.NewNop())

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("s-1", "ds-1", "North only", filtersJSON, chartsJSON, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), session))

	mock.ExpectQuery(`SELECT .* FROM sessions`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset_id", "name", "filters_json", "charts_json", "created_at"}).
			AddRow("s-1", "ds-1", "North only", filtersJSON, chartsJSON, created))
	got, err := repo.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByID_Errors(t *testing.T) {
	cols := []string{"id", "dataset_id", "name", "filters_json", "charts_json", "created_at"}

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr string
	}{
		{name: "not found", rows: sqlmock.NewRows(cols), wantErr: "session not found"},
		{
			name:    "corrupt filters",
			rows:    sqlmock.NewRows(cols).AddRow("s-1", "ds-1", "n", "{", "[]", time.Now()),
			wantErr: "failed to decode session filters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(`SELECT .* FROM sessions`).WithArgs("s-1").WillReturnRows(tt.rows)

			_, err := NewSessionRepository(db, zap.NewNop()).GetByID(context.Background(), "s-1")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRepositories_LogDatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		call      func(*sqlx.DB, *zap.Logger) error
		message   string
	}{
		{
			name: "dataset list",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM datasets`).WillReturnError(errors.New("database is locked"))
			},
			call: func(db *sqlx.DB, logger *zap.Logger) error {
				_, err := NewDatasetRepository(db, logger).List(context.Background())
				return err
			},
			message: "failed to list datasets",
		},
		{
			name: "dataset delete",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM datasets`).WillReturnError(errors.New("database is locked"))
			},
			call: func(db *sqlx.DB, logger *zap.Logger) error {
				return NewDatasetRepository(db, logger).DeleteByID(context.Background(), "ds-1")
			},
			message: "failed to delete dataset",
		},
		{
			name: "session get",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM sessions`).WillReturnError(errors.New("database is locked"))
			},
			call: func(db *sqlx.DB, logger *zap.Logger) error {
				_, err := NewSessionRepository(db, logger).GetByID(context.Background(), "s-1")
				return err
			},
			message: "failed to get session by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.setupMock(mock)
			core, logs := observer.New(zapcore.ErrorLevel)

			assert.ErrorContains(t, tt.call(db, zap.New(core)), tt.message)
			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
		})
	}
}

func TestSessionRepository_NotFoundIsNotLogged(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM sessions`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset_id", "name", "filters_json", "charts_json", "created_at"}))
	core, logs := observer.New(zapcore.ErrorLevel)

	_, err := NewSessionRepository(db, zap.New(core)).GetByID(context.Background(), "s-1")
	assert.ErrorContains(t, err, "session not found")
	assert.Zero(t, logs.Len())
}
