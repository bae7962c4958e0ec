package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// interactionRepository implements InteractionRepository
type interactionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *sql.DB, logger *zap.Logger) *interactionRepository {
	return &interactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an interaction
func (r *interactionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	query := `
		INSERT INTO user_interactions (user_id, interaction_type, course_id, category, metadata)
		VALUES (?, ?, ?, ?, ?)
	`

	var metadata any
	if len(interaction.Metadata) > 0 {
		b, err := json.Marshal(interaction.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal interaction metadata: %w", err)
		}
		metadata = string(b)
	}

	_, err := r.db.ExecContext(ctx, query,
		interaction.UserID, interaction.Type, interaction.CourseID, interaction.Category, metadata)
	if err != nil {
		r.logger.Error("failed to create interaction", zap.Error(err), zap.String("userId", interaction.UserID))
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

// CountByCategory returns interaction counts per category, most frequent first
func (r *interactionRepository) CountByCategory(ctx context.Context, userID string) ([]models.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*) AS cnt
		FROM user_interactions
		WHERE user_id = ? AND category <> ''
		GROUP BY category
		ORDER BY cnt DESC, category ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to count interactions", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan interaction count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction counts: %w", err)
	}
	return counts, nil
}
