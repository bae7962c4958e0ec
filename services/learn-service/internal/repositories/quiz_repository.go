package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// quizRepository implements QuizRepository
type quizRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB, logger *zap.Logger) *quizRepository {
	return &quizRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a quiz
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO quizzes (id, user_id, topic, difficulty, quiz_type, num_questions, questions, generated_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		quiz.ID, quiz.UserID, quiz.Topic, quiz.Difficulty, quiz.QuizType,
		quiz.NumQuestions, string(questions), quiz.GeneratedBy, quiz.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create quiz", zap.Error(err), zap.String("userId", quiz.UserID))
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID retrieves a quiz
func (r *quizRepository) GetByID(ctx context.Context, quizID string) (*models.Quiz, error) {
	query := `
		SELECT id, user_id, topic, difficulty, quiz_type, num_questions, questions, generated_by, created_at
		FROM quizzes
		WHERE id = ?
	`

	quiz := &models.Quiz{}
	var questions []byte
	err := r.db.QueryRowContext(ctx, query, quizID).Scan(
		&quiz.ID,
		&quiz.UserID,
		&quiz.Topic,
		&quiz.Difficulty,
		&quiz.QuizType,
		&quiz.NumQuestions,
		&questions,
		&quiz.GeneratedBy,
		&quiz.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz not found")
	}
	if err != nil {
		r.logger.Error("failed to get quiz", zap.Error(err), zap.String("quizId", quizID))
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return quiz, nil
}
