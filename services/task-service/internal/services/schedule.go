package services

import (
	"fmt"
	"time"

	"github.com/edulearn/platform/libs/config"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses a standard five field expression or a descriptor such as @daily
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// CalculateNextRun returns the first activation of expr after now
func CalculateNextRun(expr string, now time.Time) (time.Time, error) {
	schedule, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(now), nil
}

// NextRuns returns the next n activations of expr after now
func NextRuns(expr string, now time.Time, n int) ([]time.Time, error) {
	schedule, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("n must be positive")
	}

	runs := make([]time.Time, 0, n)
	next := now
	for range n {
		next = schedule.Next(next)
		if next.IsZero() {
			break
		}
		runs = append(runs, next)
	}
	return runs, nil
}

// Job is a recurring task enqueued by the scheduler
type Job struct {
	Name string
	Cron string
	Type string
}

// Jobs lists the recurring jobs configured for the scheduler
func Jobs(cfg config.ScheduleConfig) []Job {
	return []Job{
		{Name: "daily_reminder", Cron: cfg.ReminderCron, Type: tasks.TypeDailyReminder},
		{Name: "daily_reset", Cron: cfg.DailyResetCron, Type: tasks.TypeDailyReset},
		{Name: "token_cleanup", Cron: cfg.TokenCleanupCron, Type: tasks.TypeTokenCleanup},
	}
}

// Schedule describes every job with its next n runs formatted as RFC 3339
func Schedule(cfg config.ScheduleConfig, now time.Time, n int) ([]models.ScheduleEntry, error) {
	jobs := Jobs(cfg)
	entries := make([]models.ScheduleEntry, 0, len(jobs))
	for _, job := range jobs {
		runs, err := NextRuns(job.Cron, now, n)
		if err != nil {
			return nil, err
		}
		formatted := make([]string, len(runs))
		for i, run := range runs {
			formatted[i] = run.Format(time.RFC3339)
		}
		entries = append(entries, models.ScheduleEntry{Name: job.Name, Cron: job.Cron, NextRuns: formatted})
	}
	return entries, nil
}
