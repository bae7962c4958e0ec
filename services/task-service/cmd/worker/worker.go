package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/edulearn/platform/services/task-service/internal/services"
	"github.com/edulearn/platform/services/task-service/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ContactLookup resolves a user's e-mail address
type ContactLookup interface {
	// GetContact returns the contact of a user, or the "user not found" error
	GetContact(ctx context.Context, userID string) (*models.Contact, error)
}

// EmailTemplateRepository defines the interface for email template repository
type EmailTemplateRepository interface {
	// GetPartsBySlug retrieves an email body and subject by its slug
	//
	// "slug" parameter is used to retrieve an email body and subject by its slug.
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	GetPartsBySlug(ctx context.Context, slug string) (*models.EmailTemplateParts, error)
}

// LearnerRepository defines the maintenance queries on learn-service tables
type LearnerRepository interface {
	// GetReminderRecipients returns active users below their daily goal on day
	GetReminderRecipients(ctx context.Context, day time.Time) ([]models.ReminderRecipient, error)
	// ResetDailyTime zeroes studied time recorded before day and returns the number of users reset
	ResetDailyTime(ctx context.Context, day time.Time) (int64, error)
	// DeleteTokensCreatedBefore removes refresh tokens issued before cutoff
	DeleteTokensCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TaskLogRepository defines the interface for task log repository
type TaskLogRepository interface {
	// Create inserts a new task log
	//
	// "log" parameter is used to insert a new task log.
	//
	// If some error occurs during data insert, the error will be returned.
	Create(ctx context.Context, log *models.TaskLog) error
}

// Worker handles task processing
type Worker struct {
	logger        *zap.Logger
	contacts      ContactLookup
	templates     EmailTemplateRepository
	learners      LearnerRepository
	taskLogRepo   TaskLogRepository
	mailer        services.Mailer
	metrics       *metrics.Metrics
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	contacts ContactLookup,
	templates EmailTemplateRepository,
	learners LearnerRepository,
	taskLogRepo TaskLogRepository,
	mailer services.Mailer,
	m *metrics.Metrics,
	refreshExpiry time.Duration,
) *Worker {
	return &Worker{
		logger:        logger,
		contacts:      contacts,
		templates:     templates,
		learners:      learners,
		taskLogRepo:   taskLogRepo,
		mailer:        mailer,
		metrics:       m,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// Register adds every handler and the tracking middleware to mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.Use(w.Track)
	mux.HandleFunc(tasks.TypeAchievementEmail, w.HandleAchievementEmail)
	mux.HandleFunc(tasks.TypeDailyReminder, w.HandleDailyReminder)
	mux.HandleFunc(tasks.TypeDailyReset, w.HandleDailyReset)
	mux.HandleFunc(tasks.TypeTokenCleanup, w.HandleTokenCleanup)
}

// Track records the outcome of every task in metrics and the task log
func (w *Worker) Track(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)

		w.metrics.TasksProcessed.WithLabelValues(t.Type(), metrics.Result(err)).Inc()

		jobID, _ := asynq.GetTaskID(ctx)
		logEntry := &models.TaskLog{
			TaskType: t.Type(),
			JobID:    jobID,
			Status:   models.TaskLogStatusCompleted,
		}
		if err != nil {
			logEntry.Status = models.TaskLogStatusFailed
			logEntry.Error = err.Error()
			w.logger.Error("task failed", zap.String("type", t.Type()), zap.String("job_id", jobID), zap.Error(err))
		}
		if logErr := w.taskLogRepo.Create(context.WithoutCancel(ctx), logEntry); logErr != nil {
			w.logger.Warn("failed to write task log", zap.String("job_id", jobID), zap.Error(logErr))
		}
		return err
	})
}

// HandleAchievementEmail congratulates a user on an awarded achievement
func (w *Worker) HandleAchievementEmail(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseAchievementPayload(t)
	if err != nil {
		return err
	}

	contact, err := w.contacts.GetContact(ctx, payload.UserID)
	if err != nil {
		// The user was removed after the achievement was awarded
		if err.Error() == "user not found" {
			w.logger.Info("achievement email skipped, user not found", zap.String("user_id", payload.UserID))
			return nil
		}
		return err
	}
	if !contact.IsActive || contact.Email == "" {
		w.logger.Info("achievement email skipped, user inactive", zap.String("user_id", payload.UserID))
		return nil
	}

	parts, err := w.templates.GetPartsBySlug(ctx, models.TemplateAchievement)
	if err != nil {
		return err
	}

	vars := []string{payload.Title, contact.Username, payload.Description, strconv.Itoa(payload.Points)}
	subject := services.RenderTemplate(parts.SubjectTemplate, vars...)
	body := services.RenderTemplate(parts.BodyTemplate, vars...)

	if err := w.mailer.Send(ctx, contact.Email, subject, body); err != nil {
		return err
	}

	w.logger.Info("achievement email sent", zap.String("user_id", payload.UserID), zap.String("title", payload.Title))
	return nil
}

// HandleDailyReminder e-mails every active user who has not reached the daily goal.
// The task fails only when no reminder could be sent, so a retry never repeats delivered mail.
func (w *Worker) HandleDailyReminder(ctx context.Context, t *asynq.Task) error {
	recipients, err := w.learners.GetReminderRecipients(ctx, w.now())
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		w.logger.Info("no reminder recipients")
		return nil
	}

	parts, err := w.templates.GetPartsBySlug(ctx, models.TemplateDailyReminder)
	if err != nil {
		return err
	}

	var errs []error
	for _, rec := range recipients {
		vars := []string{rec.Username, strconv.Itoa(rec.MinutesToday), strconv.Itoa(rec.DailyGoalMinutes)}
		subject := services.RenderTemplate(parts.SubjectTemplate, vars...)
		body := services.RenderTemplate(parts.BodyTemplate, vars...)
		if err := w.mailer.Send(ctx, rec.Email, subject, body); err != nil {
			w.logger.Warn("reminder not sent", zap.String("user_id", rec.UserID), zap.Error(err))
			errs = append(errs, err)
		}
	}

	sent := len(recipients) - len(errs)
	w.logger.Info("daily reminders sent", zap.Int("sent", sent), zap.Int("failed", len(errs)))
	if sent == 0 {
		return fmt.Errorf("all %d reminders failed: %w", len(recipients), errors.Join(errs...))
	}
	return nil
}

// HandleDailyReset zeroes stale daily study time
func (w *Worker) HandleDailyReset(ctx context.Context, t *asynq.Task) error {
	n, err := w.learners.ResetDailyTime(ctx, w.now())
	if err != nil {
		return err
	}
	w.logger.Info("daily study time reset", zap.Int64("users", n))
	return nil
}

// HandleTokenCleanup deletes refresh tokens older than the refresh expiry
func (w *Worker) HandleTokenCleanup(ctx context.Context, t *asynq.Task) error {
	cutoff := w.now().Add(-w.refreshExpiry)
	n, err := w.learners.DeleteTokensCreatedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	w.logger.Info("expired refresh tokens deleted", zap.Int64("tokens", n), zap.Time("cutoff", cutoff))
	return nil
}
