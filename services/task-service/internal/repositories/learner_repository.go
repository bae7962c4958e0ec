package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"go.uber.org/zap"
)

// learnerRepository reads and maintains the learn-service tables the worker touches
type learnerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(db *sql.DB, logger *zap.Logger) *learnerRepository {
	return &learnerRepository{db: db, logger: logger}
}

// GetReminderRecipients returns active users who have studied less than their daily goal on day.
// Minutes from an earlier activity date count as zero.
func (r *learnerRepository) GetReminderRecipients(ctx context.Context, day time.Time) ([]models.ReminderRecipient, error) {
	query := `
		SELECT u.id, u.username, u.email,
			CASE WHEN s.last_activity_date = ? THEN s.time_studied_today ELSE 0 END AS minutes_today,
			s.daily_goal_minutes
		FROM users u
		INNER JOIN user_stats s ON s.user_id = u.id
		WHERE u.is_active = TRUE
			AND (s.last_activity_date IS NULL OR s.last_activity_date <> ? OR s.time_studied_today < s.daily_goal_minutes)
		ORDER BY u.id
	`

	date := day.Format(time.DateOnly)
	rows, err := r.db.QueryContext(ctx, query, date, date)
	if err != nil {
		r.logger.Error("failed to query reminder recipients", zap.Error(err), zap.String("day", date))
		return nil, fmt.Errorf("failed to query reminder recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]models.ReminderRecipient, 0)
	for rows.Next() {
		var rec models.ReminderRecipient
		if err := rows.Scan(&rec.UserID, &rec.Username, &rec.Email, &rec.MinutesToday, &rec.DailyGoalMinutes); err != nil {
			r.logger.Error("failed to scan reminder recipient", zap.Error(err))
			return nil, fmt.Errorf("failed to scan reminder recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reminder recipients", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return recipients, nil
}

// ResetDailyTime zeroes time_studied_today for users whose last activity is before day
func (r *learnerRepository) ResetDailyTime(ctx context.Context, day time.Time) (int64, error) {
	query := `
		UPDATE user_stats
		SET time_studied_today = 0
		WHERE time_studied_today <> 0
			AND (last_activity_date IS NULL OR last_activity_date < ?)
	`

	result, err := r.db.ExecContext(ctx, query, day.Format(time.DateOnly))
	if err != nil {
		r.logger.Error("failed to reset daily time", zap.Error(err), zap.Time("day", day))
		return 0, fmt.Errorf("failed to reset daily time: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// DeleteTokensCreatedBefore removes refresh tokens issued before cutoff
func (r *learnerRepository) DeleteTokensCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE created_at < ?`, cutoff)
	if err != nil {
		r.logger.Error("failed to delete expired tokens", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
