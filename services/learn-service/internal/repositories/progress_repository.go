package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// progressRepository implements ProgressRepository over user_progress and study_activity
type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCompletion records a completed lesson. It returns false when the lesson was already completed.
func (r *progressRepository) CreateCompletion(ctx context.Context, c *models.LessonCompletion) (bool, error) {
	query := `
		INSERT IGNORE INTO user_progress (user_id, course_id, lesson_id, completed_at, time_spent_minutes)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, c.UserID, c.CourseID, c.LessonID, c.CompletedAt, c.TimeSpentMinutes)
	if err != nil {
		r.logger.Error("failed to record lesson completion", zap.Error(err), zap.String("userId", c.UserID))
		return false, fmt.Errorf("failed to record lesson completion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// CountCompletedLessons counts the completed lessons of one course
func (r *progressRepository) CountCompletedLessons(ctx context.Context, userID, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM user_progress WHERE user_id = ? AND course_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&count); err != nil {
		r.logger.Error("failed to count completed lessons", zap.Error(err))
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return count, nil
}

// GetCompletionsByUser lists every lesson completion of a user in completion order
func (r *progressRepository) GetCompletionsByUser(ctx context.Context, userID string) ([]models.LessonCompletion, error) {
	query := `
		SELECT user_id, course_id, lesson_id, completed_at, time_spent_minutes
		FROM user_progress
		WHERE user_id = ?
		ORDER BY completed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query lesson completions", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to query lesson completions: %w", err)
	}
	defer rows.Close()

	completions := []models.LessonCompletion{}
	for rows.Next() {
		var c models.LessonCompletion
		if err := rows.Scan(&c.UserID, &c.CourseID, &c.LessonID, &c.CompletedAt, &c.TimeSpentMinutes); err != nil {
			r.logger.Error("failed to scan lesson completion", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson completion: %w", err)
		}
		completions = append(completions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson completions: %w", err)
	}
	return completions, nil
}

// CountCompletionsSince counts lesson completions at or after since
func (r *progressRepository) CountCompletionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM user_progress WHERE user_id = ? AND completed_at >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		r.logger.Error("failed to count recent completions", zap.Error(err))
		return 0, fmt.Errorf("failed to count recent completions: %w", err)
	}
	return count, nil
}

// AddStudyMinutes adds minutes to the study_activity row of a day
func (r *progressRepository) AddStudyMinutes(ctx context.Context, userID string, day time.Time, minutes int) error {
	query := `
		INSERT INTO study_activity (user_id, activity_date, minutes)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE minutes = minutes + VALUES(minutes)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, day.Format(time.DateOnly), minutes); err != nil {
		r.logger.Error("failed to add study minutes", zap.Error(err), zap.String("userId", userID))
		return fmt.Errorf("failed to add study minutes: %w", err)
	}
	return nil
}

// GetStudyActivity returns per-day minutes from the given day onwards
func (r *progressRepository) GetStudyActivity(ctx context.Context, userID string, from time.Time) (map[string]int, error) {
	query := `
		SELECT activity_date, minutes
		FROM study_activity
		WHERE user_id = ? AND activity_date >= ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from.Format(time.DateOnly))
	if err != nil {
		r.logger.Error("failed to query study activity", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to query study activity: %w", err)
	}
	defer rows.Close()

	activity := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var minutes int
		if err := rows.Scan(&day, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan study activity: %w", err)
		}
		activity[day.Format(time.DateOnly)] = minutes
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating study activity: %w", err)
	}
	return activity, nil
}
