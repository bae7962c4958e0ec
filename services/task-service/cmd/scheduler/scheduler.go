package main

import (
	"context"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/task-service/internal/services"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const lockKeyPrefix = "task-service:scheduler:"

// Locker claims a scheduled run so only one scheduler replica enqueues it
type Locker interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Scheduler enqueues the recurring maintenance tasks on their cron schedules
type Scheduler struct {
	cron     *cron.Cron
	enqueuer services.Enqueuer
	locker   Locker
	logger   *zap.Logger
	jobs     []services.Job
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(enqueuer services.Enqueuer, locker Locker, logger *zap.Logger, jobs []services.Job) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		enqueuer: enqueuer,
		locker:   locker,
		logger:   logger,
		jobs:     jobs,
		now:      time.Now,
	}
}

// Register adds every job to the cron runner and logs its next runs
func (s *Scheduler) Register() error {
	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.Cron, func() { s.run(context.Background(), job) }); err != nil {
			return fmt.Errorf("invalid cron expression %q for %s: %w", job.Cron, job.Name, err)
		}

		runs, err := services.NextRuns(job.Cron, s.now(), 3)
		if err != nil {
			return err
		}
		s.logger.Info("Job scheduled",
			zap.String("job", job.Name),
			zap.String("cron", job.Cron),
			zap.Times("next_runs", runs),
		)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// run enqueues one job unless another replica already claimed this minute
func (s *Scheduler) run(ctx context.Context, job services.Job) {
	minute := s.now().UTC().Truncate(time.Minute)
	key := fmt.Sprintf("%s%s:%d", lockKeyPrefix, job.Name, minute.Unix())

	claimed, err := s.locker.SetNX(ctx, key, "1", 10*time.Minute).Result()
	if err != nil {
		s.logger.Error("Failed to claim job run", zap.String("job", job.Name), zap.Error(err))
		return
	}
	if !claimed {
		s.logger.Debug("Job run already claimed", zap.String("job", job.Name))
		return
	}

	task, err := tasks.NewMaintenanceTask(job.Type)
	if err != nil {
		s.logger.Error("Failed to build task", zap.String("job", job.Name), zap.Error(err))
		return
	}

	info, err := s.enqueuer.EnqueueContext(ctx, task)
	if err != nil {
		s.logger.Error("Failed to enqueue task", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Info("Enqueued scheduled task", zap.String("job", job.Name), zap.String("task_id", info.ID))
}
