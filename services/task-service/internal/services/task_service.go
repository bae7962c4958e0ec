package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer puts tasks on an asynq queue
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type taskService struct {
	enqueuer Enqueuer
	schedule config.ScheduleConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a service that triggers maintenance tasks and reports the schedule
func NewTaskService(enqueuer Enqueuer, schedule config.ScheduleConfig, logger *zap.Logger) *taskService {
	return &taskService{
		enqueuer: enqueuer,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Trigger enqueues a maintenance task for immediate processing
func (s *taskService) Trigger(ctx context.Context, taskType string) (*models.EnqueuedTask, error) {
	task, err := tasks.NewMaintenanceTask(taskType)
	if err != nil {
		return nil, err
	}

	info, err := s.enqueuer.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}

	s.logger.Info("task triggered", zap.String("type", taskType), zap.String("task_id", info.ID))
	return &models.EnqueuedTask{TaskID: info.ID, Type: taskType, Queue: info.Queue}, nil
}

// Schedule returns the next n runs of every recurring job
func (s *taskService) Schedule(n int) ([]models.ScheduleEntry, error) {
	if n < 1 || n > 20 {
		return nil, fmt.Errorf("n must be between 1 and 20")
	}
	return Schedule(s.schedule, s.now(), n)
}
