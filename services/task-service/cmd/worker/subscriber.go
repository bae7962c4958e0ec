package main

import (
	"context"

	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/services/task-service/internal/services"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"go.uber.org/zap"
)

// achievementHandler turns achievement.awarded events into email:achievement tasks
func achievementHandler(enqueuer services.Enqueuer, logger *zap.Logger) events.Handler {
	return func(ctx context.Context, event *events.Event) error {
		awarded, err := events.Decode[events.AchievementAwarded](event)
		if err != nil {
			return err
		}

		task, err := tasks.NewAchievementEmailTask(tasks.AchievementPayload{
			UserID:      awarded.UserID,
			Title:       awarded.Title,
			Description: awarded.Description,
			Points:      awarded.Points,
		})
		if err != nil {
			return err
		}

		info, err := enqueuer.EnqueueContext(ctx, task)
		if err != nil {
			return err
		}
		logger.Debug("achievement email enqueued",
			zap.String("event_id", event.ID),
			zap.String("task_id", info.ID),
		)
		return nil
	}
}
