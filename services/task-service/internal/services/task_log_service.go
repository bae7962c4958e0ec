package services

import (
	"context"
	"fmt"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"go.uber.org/zap"
)

// TaskLogRepository is the interface that wraps methods for task_logs table data access
type TaskLogRepository interface {
	Create(ctx context.Context, log *models.TaskLog) error
	GetByID(ctx context.Context, id int) (*models.TaskLog, error)
	GetAll(ctx context.Context, page, count int, taskType, status string) ([]models.TaskLogListItem, error)
}

type taskLogService struct {
	repo   TaskLogRepository
	logger *zap.Logger
}

// NewTaskLogService creates a new task log service
func NewTaskLogService(repo TaskLogRepository, logger *zap.Logger) *taskLogService {
	return &taskLogService{
		repo:   repo,
		logger: logger,
	}
}

// Create creates a new task log
func (s *taskLogService) Create(ctx context.Context, log *models.TaskLog) error {
	if err := s.repo.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to create task log: %w", err)
	}
	return nil
}

// GetByID retrieves a task log by ID
func (s *taskLogService) GetByID(ctx context.Context, id int) (*models.TaskLog, error) {
	return s.repo.GetByID(ctx, id)
}

// GetAll retrieves a paginated list of task logs. An unknown status is ignored.
func (s *taskLogService) GetAll(ctx context.Context, page, count int, taskType, status string) ([]models.TaskLogListItem, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 20
	}

	if status != string(models.TaskLogStatusCompleted) && status != string(models.TaskLogStatusFailed) {
		status = ""
	}

	return s.repo.GetAll(ctx, page, count, taskType, status)
}
