package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var enrollmentRowColumns = []string{"user_id", "course_id", "enrolled_at", "progress_percentage", "completed_at"}

func TestEnrollmentRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO enrollments`).
					WithArgs("u-1", "c-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already enrolled",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO enrollments`).WillReturnError(duplicateEntryError)
			},
			expectedError: "already enrolled",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO enrollments`).WillReturnError(errors.New("fk violation"))
			},
			expectedError: "failed to create enrollment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupTestDB(t)
			repo := NewEnrollmentRepository(db, logger)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), "u-1", "c-1")
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_GetByUser(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewEnrollmentRepository(db, logger)
	now := time.Now()

	mock.ExpectQuery(`SELECT user_id, course_id, enrolled_at, progress_percentage, completed_at`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("u-1", "c-1", now, 100.0, now).
			AddRow("u-1", "c-2", now, 40.0, nil))

	enrollments, err := repo.GetByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.NotNil(t, enrollments[0].CompletedAt)
	assert.Nil(t, enrollments[1].CompletedAt)
	assert.Equal(t, 40.0, enrollments[1].ProgressPercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_Get(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewEnrollmentRepository(db, logger)

	mock.ExpectQuery(`FROM enrollments`).
		WithArgs("u-1", "c-9").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns))

	_, err := repo.Get(context.Background(), "u-1", "c-9")
	require.Error(t, err)
	assert.Equal(t, "enrollment not found", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_UpdateProgress(t *testing.T) {
	completedAt := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE enrollments`).
					WithArgs(100.0, sqlmock.AnyArg(), "u-1", "c-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not enrolled",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE enrollments`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: "enrollment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupTestDB(t)
			repo := NewEnrollmentRepository(db, logger)
			tt.setupMock(mock)

			err := repo.UpdateProgress(context.Background(), "u-1", "c-1", 100, &completedAt)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_CountCompletedSince(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewEnrollmentRepository(db, logger)
	since := time.Now().AddDate(0, 0, -30)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments WHERE user_id = \? AND completed_at IS NOT NULL`).
		WithArgs("u-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountCompletedSince(context.Background(), "u-1", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
