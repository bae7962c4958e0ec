package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// quizResultRepository implements QuizResultRepository
type quizResultRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuizResultRepository creates a new quiz result repository
func NewQuizResultRepository(db *sql.DB, logger *zap.Logger) *quizResultRepository {
	return &quizResultRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a quiz result
func (r *quizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	answers, err := json.Marshal(result.UserAnswers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	query := `
		INSERT INTO quiz_results (id, user_id, quiz_id, topic, difficulty, score_percentage,
			correct_answers, total_questions, user_answers, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		result.ID, result.UserID, result.QuizID, result.Topic, result.Difficulty, result.ScorePercentage,
		result.CorrectAnswers, result.TotalQuestions, string(answers), result.CompletedAt)
	if err != nil {
		r.logger.Error("failed to create quiz result", zap.Error(err), zap.String("userId", result.UserID))
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// GetByUser lists a user's results oldest first
func (r *quizResultRepository) GetByUser(ctx context.Context, userID string) ([]models.QuizResult, error) {
	query := `
		SELECT id, user_id, quiz_id, topic, difficulty, score_percentage, correct_answers,
			total_questions, user_answers, completed_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY completed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query quiz results", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	results := []models.QuizResult{}
	for rows.Next() {
		var res models.QuizResult
		var answers []byte
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.QuizID,
			&res.Topic,
			&res.Difficulty,
			&res.ScorePercentage,
			&res.CorrectAnswers,
			&res.TotalQuestions,
			&answers,
			&res.CompletedAt,
		); err != nil {
			r.logger.Error("failed to scan quiz result", zap.Error(err))
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		if err := json.Unmarshal(answers, &res.UserAnswers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz results: %w", err)
	}
	return results, nil
}

// CountScoresAtLeast counts results scoring at least minScore
func (r *quizResultRepository) CountScoresAtLeast(ctx context.Context, userID string, minScore float64) (int, error) {
	query := `SELECT COUNT(*) FROM quiz_results WHERE user_id = ? AND score_percentage >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, minScore).Scan(&count); err != nil {
		r.logger.Error("failed to count high scores", zap.Error(err))
		return 0, fmt.Errorf("failed to count high scores: %w", err)
	}
	return count, nil
}

// AverageScore returns the mean score of a user, 0 when there are no results
func (r *quizResultRepository) AverageScore(ctx context.Context, userID string) (float64, error) {
	query := `SELECT COALESCE(AVG(score_percentage), 0) FROM quiz_results WHERE user_id = ?`

	var avg float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&avg); err != nil {
		r.logger.Error("failed to average quiz scores", zap.Error(err))
		return 0, fmt.Errorf("failed to average quiz scores: %w", err)
	}
	return avg, nil
}
