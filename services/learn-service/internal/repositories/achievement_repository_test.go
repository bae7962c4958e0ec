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

func TestAchievementRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "new achievement", affected: 1, expected: true},
		{name: "already earned", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupTestDB(t)
			repo := NewAchievementRepository(db, logger)

			mock.ExpectExec(`INSERT IGNORE INTO user_achievements`).
				WithArgs("u-1", models.AchievementFirstCourse).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			created, err := repo.Create(context.Background(), "u-1", models.AchievementFirstCourse)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, created)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAchievementRepository_GetByUser(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewAchievementRepository(db, logger)
	now := time.Now()

	mock.ExpectQuery(`FROM user_achievements`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"achievement_type", "earned_at"}).
			AddRow(models.AchievementFirstCourse, now).
			AddRow("retired_badge", now).
			AddRow(models.AchievementWeekStreak, now))

	achievements, err := repo.GetByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	assert.Equal(t, "Getting Started", achievements[0].Title)
	assert.Equal(t, 150, achievements[1].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}
