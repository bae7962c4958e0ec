package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupEmailTemplateTestRepository creates an email template repository with a mock database
func setupEmailTemplateTestRepository(t *testing.T) (*emailTemplateRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewEmailTemplateRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestEmailTemplateRepository_GetBySlug(t *testing.T) {
	tests := []struct {
		name          string
		slug          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "success",
			slug: models.TemplateAchievement,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "slug", "variables", "subject_template", "body_template", "created_at", "updated_at"}).
					AddRow(1, models.TemplateAchievement, "title, username,,points", "You earned {{1}}!", "Body", time.Now(), time.Now())
				mock.ExpectQuery(`SELECT id, slug, variables, subject_template, body_template, created_at, updated_at`).
					WithArgs(models.TemplateAchievement).
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			slug: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, slug`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: "email template not found",
		},
		{
			name: "database error",
			slug: models.TemplateAchievement,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, slug`).
					WithArgs(models.TemplateAchievement).
					WillReturnError(errors.New("database error"))
			},
			expectedError: "failed to get email template achievement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupEmailTemplateTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetBySlug(context.Background(), tt.slug)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, result.ID)
				assert.Equal(t, "You earned {{1}}!", result.SubjectTemplate)
				assert.Equal(t, []string{"title", "username", "points"}, result.Variables)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmailTemplateRepository_GetPartsBySlug(t *testing.T) {
	repo, mock, cleanup := setupEmailTemplateTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT subject_template, body_template`).
		WithArgs(models.TemplateDailyReminder).
		WillReturnRows(sqlmock.NewRows([]string{"subject_template", "body_template"}).AddRow("Subject", "Body"))
	mock.ExpectQuery(`SELECT subject_template, body_template`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	parts, err := repo.GetPartsBySlug(context.Background(), models.TemplateDailyReminder)
	require.NoError(t, err)
	assert.Equal(t, "Subject", parts.SubjectTemplate)
	assert.Equal(t, "Body", parts.BodyTemplate)

	_, err = repo.GetPartsBySlug(context.Background(), "missing")
	assert.EqualError(t, err, "email template not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailTemplateRepository_GetAll(t *testing.T) {
	tests := []struct {
		name          string
		page          int
		count         int
		search        string
		setupMock     func(sqlmock.Sqlmock)
		expectedLen   int
		expectedError bool
	}{
		{
			name:  "success without search",
			page:  1,
			count: 20,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "slug", "variables", "updated_at"}).
					AddRow(1, "achievement", "title,username,description,points", time.Now()).
					AddRow(2, "daily_reminder", "", time.Now())
				mock.ExpectQuery(`SELECT id, slug, variables, updated_at FROM email_templates ORDER BY slug LIMIT \? OFFSET \?`).
					WithArgs(20, 0).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name:   "success with search and page",
			page:   2,
			count:  10,
			search: "daily",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "slug", "variables", "updated_at"})
				mock.ExpectQuery(`WHERE slug LIKE \? ORDER BY slug`).
					WithArgs("%daily%", 10, 10).
					WillReturnRows(rows)
			},
			expectedLen: 0,
		},
		{
			name:  "database error",
			page:  1,
			count: 20,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, slug`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupEmailTemplateTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetAll(context.Background(), tt.page, tt.count, tt.search)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, result)
				assert.Len(t, result, tt.expectedLen)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmailTemplateRepository_LogsDatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := NewEmailTemplateRepository(db, zap.New(core))

	mock.ExpectQuery(`SELECT subject_template, body_template FROM email_templates`).
		WithArgs("achievement").
		WillReturnError(errors.New("connection reset"))
	_, err = repo.GetPartsBySlug(context.Background(), "achievement")
	assert.Error(t, err)

	mock.ExpectQuery(`SELECT subject_template, body_template FROM email_templates`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetPartsBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, errTemplateNotFound)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed to get email template", entries[0].Message)
	assert.Equal(t, "achievement", entries[0].ContextMap()["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailTemplateRepository_UpdateBySlug(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.UpdateEmailTemplateRequest
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "both fields",
			req:  &models.UpdateEmailTemplateRequest{SubjectTemplate: "New subject", BodyTemplate: "New body"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE email_templates SET subject_template = \?, body_template = \? WHERE slug = \?`).
					WithArgs("New subject", "New body", "achievement").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "body only",
			req:  &models.UpdateEmailTemplateRequest{BodyTemplate: "New body"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`SET body_template = \? WHERE`).
					WithArgs("New body", "achievement").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "nothing to update",
			req:       &models.UpdateEmailTemplateRequest{},
			setupMock: func(mock sqlmock.Sqlmock) {},
		},
		{
			name: "not found",
			req:  &models.UpdateEmailTemplateRequest{BodyTemplate: "New body"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE email_templates`).
					WithArgs("New body", "achievement").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: "email template not found",
		},
		{
			name: "database error",
			req:  &models.UpdateEmailTemplateRequest{BodyTemplate: "New body"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE email_templates`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: "failed to update email template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupEmailTemplateTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.UpdateBySlug(context.Background(), "achievement", tt.req)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
