package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// userStatsRepository implements UserStatsRepository
type userStatsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserStatsRepository creates a new user stats repository
func NewUserStatsRepository(db *sql.DB, logger *zap.Logger) *userStatsRepository {
	return &userStatsRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the stats row of a user if it does not exist yet
func (r *userStatsRepository) Create(ctx context.Context, userID string, dailyGoal int) error {
	query := `INSERT IGNORE INTO user_stats (user_id, daily_goal_minutes) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, dailyGoal); err != nil {
		r.logger.Error("failed to create user stats", zap.Error(err), zap.String("userId", userID))
		return fmt.Errorf("failed to create user stats: %w", err)
	}
	return nil
}

// GetByUserID retrieves the stats row of a user
func (r *userStatsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `
		SELECT user_id, total_points, level, streak_days, time_studied_today, daily_goal_minutes,
			last_activity_date, total_study_time, created_at, updated_at
		FROM user_stats
		WHERE user_id = ?
	`

	stats := &models.UserStats{}
	var lastActivity sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalPoints,
		&stats.Level,
		&stats.StreakDays,
		&stats.TimeStudiedToday,
		&stats.DailyGoalMinutes,
		&lastActivity,
		&stats.TotalStudyTime,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user stats not found")
	}
	if err != nil {
		r.logger.Error("failed to get user stats", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if lastActivity.Valid {
		stats.LastActivityDate = &lastActivity.Time
	}

	return stats, nil
}

// AddPoints increments the point total and raises the level when a threshold is crossed.
// MySQL evaluates SET assignments left to right, so level sees the new total.
func (r *userStatsRepository) AddPoints(ctx context.Context, userID string, points int) error {
	query := `
		UPDATE user_stats
		SET total_points = total_points + ?,
			level = GREATEST(level, FLOOR(total_points / ?) + 1)
		WHERE user_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, points, models.PointsPerLevel, userID); err != nil {
		r.logger.Error("failed to add points", zap.Error(err), zap.String("userId", userID))
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

// SaveActivity stores the outcome of a daily activity update
func (r *userStatsRepository) SaveActivity(ctx context.Context, stats *models.UserStats) error {
	query := `
		UPDATE user_stats
		SET time_studied_today = ?, streak_days = ?, last_activity_date = ?, total_study_time = ?
		WHERE user_id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		stats.TimeStudiedToday, stats.StreakDays, stats.LastActivityDate, stats.TotalStudyTime, stats.UserID)
	if err != nil {
		r.logger.Error("failed to save activity", zap.Error(err), zap.String("userId", stats.UserID))
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// UpdateDailyGoal changes the daily goal
func (r *userStatsRepository) UpdateDailyGoal(ctx context.Context, userID string, minutes int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE user_stats SET daily_goal_minutes = ? WHERE user_id = ?`, minutes, userID); err != nil {
		r.logger.Error("failed to update daily goal", zap.Error(err), zap.String("userId", userID))
		return fmt.Errorf("failed to update daily goal: %w", err)
	}
	return nil
}
