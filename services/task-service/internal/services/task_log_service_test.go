package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTaskLogRepository is a mock implementation of TaskLogRepository
type mockTaskLogRepository struct {
	log  *models.TaskLog
	logs []models.TaskLogListItem
	err  error

	created    []models.TaskLog
	lastPage   int
	lastCount  int
	lastType   string
	lastStatus string
}

func (m *mockTaskLogRepository) Create(ctx context.Context, log *models.TaskLog) error {
	if m.err != nil {
		return m.err
	}
	log.ID = len(m.created) + 1
	m.created = append(m.created, *log)
	return nil
}

func (m *mockTaskLogRepository) GetByID(ctx context.Context, id int) (*models.TaskLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.log, nil
}

func (m *mockTaskLogRepository) GetAll(ctx context.Context, page, count int, taskType, status string) ([]models.TaskLogListItem, error) {
	m.lastPage, m.lastCount, m.lastType, m.lastStatus = page, count, taskType, status
	if m.err != nil {
		return nil, m.err
	}
	return m.logs, nil
}

func TestNewTaskLogService(t *testing.T) {
	repo := &mockTaskLogRepository{}
	logger := zap.NewNop()

	svc := NewTaskLogService(repo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
}

func TestTaskLogService_Create(t *testing.T) {
	tests := []struct {
		name          string
		repo          *mockTaskLogRepository
		expectedError bool
	}{
		{name: "success", repo: &mockTaskLogRepository{}},
		{name: "repository error", repo: &mockTaskLogRepository{err: errors.New("database error")}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTaskLogService(tt.repo, zap.NewNop())
			log := &models.TaskLog{TaskType: "auth:token_cleanup", JobID: "job-1", Status: models.TaskLogStatusCompleted}

			err := svc.Create(context.Background(), log)

			if tt.expectedError {
				assert.ErrorContains(t, err, "failed to create task log")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, log.ID)
			}
		})
	}
}

func TestTaskLogService_GetAll(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		count          int
		status         string
		expectedPage   int
		expectedCount  int
		expectedStatus string
	}{
		{name: "defaults", page: 0, count: 0, expectedPage: 1, expectedCount: 20},
		{name: "explicit paging", page: 3, count: 5, status: "Failed", expectedPage: 3, expectedCount: 5, expectedStatus: "Failed"},
		{name: "unknown status ignored", page: 1, count: 10, status: "Pending", expectedPage: 1, expectedCount: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTaskLogRepository{logs: []models.TaskLogListItem{{ID: 1}}}
			svc := NewTaskLogService(repo, zap.NewNop())

			logs, err := svc.GetAll(context.Background(), tt.page, tt.count, "email:achievement", tt.status)
			require.NoError(t, err)
			assert.Len(t, logs, 1)
			assert.Equal(t, tt.expectedPage, repo.lastPage)
			assert.Equal(t, tt.expectedCount, repo.lastCount)
			assert.Equal(t, "email:achievement", repo.lastType)
			assert.Equal(t, tt.expectedStatus, repo.lastStatus)
		})
	}
}

func TestTaskLogService_GetByID(t *testing.T) {
	repo := &mockTaskLogRepository{log: &models.TaskLog{ID: 4, TaskType: "progress:daily_reset"}}
	svc := NewTaskLogService(repo, zap.NewNop())

	log, err := svc.GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "progress:daily_reset", log.TaskType)
}
