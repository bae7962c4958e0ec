package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizResultRepository_Create(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewQuizResultRepository(db, logger)

	result := &models.QuizResult{
		ID: "r-1", UserID: "u-1", QuizID: "q-1", Topic: "Python", Difficulty: "Beginner",
		ScorePercentage: 66.7, CorrectAnswers: 2, TotalQuestions: 3,
		UserAnswers: map[int]string{0: "True", 2: "x"}, CompletedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO quiz_results`).
		WithArgs("r-1", "u-1", "q-1", "Python", "Beginner", 66.7, 2, 3, `{"0":"True","2":"x"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizResultRepository_GetByUser(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewQuizResultRepository(db, logger)
	now := time.Now()

	mock.ExpectQuery(`FROM quiz_results`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "quiz_id", "topic", "difficulty",
			"score_percentage", "correct_answers", "total_questions", "user_answers", "completed_at"}).
			AddRow("r-1", "u-1", "q-1", "Python", "Beginner", 50.0, 1, 2, []byte(`{"0":"True"}`), now))

	results, err := repo.GetByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[int]string{0: "True"}, results[0].UserAnswers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizResultRepository_Aggregates(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewQuizResultRepository(db, logger)

	mock.ExpectQuery(`score_percentage >= \?`).
		WithArgs("u-1", 90.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`AVG\(score_percentage\)`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(82.5))

	count, err := repo.CountScoresAtLeast(context.Background(), "u-1", 90)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	avg, err := repo.AverageScore(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 82.5, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}
