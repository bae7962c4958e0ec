package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// achievementRepository implements AchievementRepository
type achievementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *sql.DB, logger *zap.Logger) *achievementRepository {
	return &achievementRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an earned achievement. It returns false if the user already had it.
func (r *achievementRepository) Create(ctx context.Context, userID, achievementID string) (bool, error) {
	query := `INSERT IGNORE INTO user_achievements (user_id, achievement_type) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, achievementID)
	if err != nil {
		r.logger.Error("failed to create user achievement", zap.Error(err),
			zap.String("userId", userID), zap.String("achievement", achievementID))
		return false, fmt.Errorf("failed to create user achievement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetByUser lists a user's achievements in the order they were earned.
// Rows referring to unknown definitions are skipped.
func (r *achievementRepository) GetByUser(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	query := `
		SELECT achievement_type, earned_at
		FROM user_achievements
		WHERE user_id = ?
		ORDER BY earned_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query user achievements", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to query user achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.UserAchievement{}
	for rows.Next() {
		var ua models.UserAchievement
		var achievementID string
		if err := rows.Scan(&achievementID, &ua.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user achievement: %w", err)
		}
		def, ok := models.FindAchievement(achievementID)
		if !ok {
			r.logger.Warn("unknown achievement type", zap.String("achievement", achievementID))
			continue
		}
		ua.Achievement = def
		achievements = append(achievements, ua)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user achievements: %w", err)
	}
	return achievements, nil
}
