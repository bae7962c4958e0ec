package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type progressFixture struct {
	service      *progressService
	stats        *mockStatsRepository
	progress     *mockProgressRepository
	achievements *mockAchievementRepository
	enrollments  *mockEnrollmentRepository
	quizScores   *mockQuizScores
	courses      *mockCourseRepository
	interactions *mockInteractionRecorder
	publisher    *mockPublisher
}

func newProgressFixture() *progressFixture {
	f := &progressFixture{
		stats:        newMockStatsRepository(),
		progress:     newMockProgressRepository(),
		achievements: newMockAchievementRepository(),
		enrollments:  &mockEnrollmentRepository{},
		quizScores:   &mockQuizScores{},
		courses:      testCatalog(),
		interactions: &mockInteractionRecorder{},
		publisher:    &mockPublisher{},
	}
	f.service = NewProgressService(f.stats, f.progress, f.achievements, f.enrollments, f.quizScores,
		f.courses, f.publisher, metrics.NewMetrics(), zap.NewNop())
	f.service.SetInteractionRecorder(f.interactions)
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func (f *progressFixture) enroll(userID, courseID string) {
	f.enrollments.enrollments = append(f.enrollments.enrollments, &models.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: fixedNow})
}

func (f *progressFixture) complete(userID, courseID, lessonID string) {
	f.progress.completions = append(f.progress.completions, models.LessonCompletion{
		UserID: userID, CourseID: courseID, LessonID: lessonID, CompletedAt: fixedNow.AddDate(0, 0, -1), TimeSpentMinutes: 10,
	})
}

func TestProgressService_CompleteLesson_Errors(t *testing.T) {
	tests := []struct {
		name          string
		courseID      string
		lessonID      string
		timeSpent     int
		enrolled      bool
		errorContains string
	}{
		{
			name:          "negative time",
			courseID:      "c-py",
			lessonID:      "l-1",
			timeSpent:     -5,
			enrolled:      true,
			errorContains: "must not be negative",
		},
		{
			name:          "not enrolled",
			courseID:      "c-py",
			lessonID:      "l-1",
			enrolled:      false,
			errorContains: "not enrolled",
		},
		{
			name:          "lesson of another course",
			courseID:      "c-py",
			lessonID:      "l-99",
			enrolled:      true,
			errorContains: "lesson not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture()
			if tt.enrolled {
				f.enroll("u-1", tt.courseID)
			}

			result, err := f.service.CompleteLesson(context.Background(), "u-1", tt.courseID, tt.lessonID, tt.timeSpent)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Empty(t, f.progress.completions)
		})
	}
}

func TestProgressService_CompleteLesson_FirstLesson(t *testing.T) {
	f := newProgressFixture()
	f.enroll("u-1", "c-py")

	result, err := f.service.CompleteLesson(context.Background(), "u-1", "c-py", "l-1", 15)
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.False(t, result.CourseCompleted)
	assert.InDelta(t, 33.33, result.ProgressPercentage, 0.01)
	assert.Equal(t, models.LessonPoints, result.PointsEarned)
	assert.Empty(t, result.NewAchievements)

	stats := f.stats.stats["u-1"]
	assert.Equal(t, models.LessonPoints, stats.TotalPoints)
	assert.Equal(t, 15, stats.TimeStudiedToday)
	assert.Equal(t, 1, stats.StreakDays)
	assert.Equal(t, 15, f.progress.activity["2026-03-10"])
	assert.InDelta(t, 33.33, f.enrollments.find("u-1", "c-py").ProgressPercentage, 0.01)
	assert.Nil(t, f.enrollments.find("u-1", "c-py").CompletedAt)
}

func TestProgressService_CompleteLesson_Duplicate(t *testing.T) {
	f := newProgressFixture()
	f.enroll("u-1", "c-py")

	_, err := f.service.CompleteLesson(context.Background(), "u-1", "c-py", "l-1", 0)
	require.NoError(t, err)
	result, err := f.service.CompleteLesson(context.Background(), "u-1", "c-py", "l-1", 0)
	require.NoError(t, err)

	assert.False(t, result.Completed)
	assert.Zero(t, result.PointsEarned)
	assert.Len(t, f.progress.completions, 1)
	assert.Equal(t, models.LessonPoints, f.stats.stats["u-1"].TotalPoints)
}

func TestProgressService_CompleteLesson_FinishesCourse(t *testing.T) {
	tests := []struct {
		name                 string
		completedRecently    int
		expectedAchievements []string
		expectedPoints       int
	}{
		{
			name:                 "first completed course",
			completedRecently:    1,
			expectedAchievements: []string{models.AchievementFirstCompletion},
			expectedPoints:       models.LessonPoints + models.CourseCompletionPoints + 100,
		},
		{
			name:                 "third course this month",
			completedRecently:    3,
			expectedAchievements: []string{models.AchievementFirstCompletion, models.AchievementSpeedLearner},
			expectedPoints:       models.LessonPoints + models.CourseCompletionPoints + 100 + 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture()
			f.enroll("u-1", "c-py")
			f.complete("u-1", "c-py", "l-1")
			f.complete("u-1", "c-py", "l-2")
			f.enrollments.completedRecent = tt.completedRecently

			result, err := f.service.CompleteLesson(context.Background(), "u-1", "c-py", "l-3", 0)
			require.NoError(t, err)

			assert.True(t, result.CourseCompleted)
			assert.Equal(t, 100.0, result.ProgressPercentage)
			assert.Equal(t, tt.expectedAchievements, result.NewAchievements)
			assert.Equal(t, tt.expectedPoints, result.PointsEarned)
			assert.Equal(t, tt.expectedPoints, f.stats.stats["u-1"].TotalPoints)
			assert.NotNil(t, f.enrollments.find("u-1", "c-py").CompletedAt)
			assert.Contains(t, f.interactions.calls, "complete:c-py:Technology")
			assert.Contains(t, f.publisher.events, events.TypeCourseCompleted)
			assert.Contains(t, f.publisher.events, events.TypeAchievementAwarded)
		})
	}
}

func TestProgressService_UpdateDailyActivity(t *testing.T) {
	tests := []struct {
		name           string
		lastActivity   *time.Time
		streak         int
		todayMinutes   int
		minutes        int
		expectedStreak int
		expectedToday  int
		expectedAward  bool
		errorContains  string
	}{
		{
			name:          "non positive minutes",
			minutes:       0,
			errorContains: "must be positive",
		},
		{
			name:           "first activity",
			minutes:        20,
			expectedStreak: 1,
			expectedToday:  20,
		},
		{
			name:           "same day adds up",
			lastActivity:   dayOffset(0),
			streak:         3,
			todayMinutes:   10,
			minutes:        20,
			expectedStreak: 3,
			expectedToday:  30,
		},
		{
			name:           "consecutive day extends streak",
			lastActivity:   dayOffset(-1),
			streak:         3,
			todayMinutes:   40,
			minutes:        20,
			expectedStreak: 4,
			expectedToday:  20,
		},
		{
			name:           "gap resets streak",
			lastActivity:   dayOffset(-3),
			streak:         5,
			todayMinutes:   40,
			minutes:        20,
			expectedStreak: 1,
			expectedToday:  20,
		},
		{
			name:           "seventh day earns week streak",
			lastActivity:   dayOffset(-1),
			streak:         6,
			minutes:        30,
			expectedStreak: 7,
			expectedToday:  30,
			expectedAward:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture()
			require.NoError(t, f.stats.Create(context.Background(), "u-1", 30))
			f.stats.stats["u-1"].LastActivityDate = tt.lastActivity
			f.stats.stats["u-1"].StreakDays = tt.streak
			f.stats.stats["u-1"].TimeStudiedToday = tt.todayMinutes

			stats, err := f.service.UpdateDailyActivity(context.Background(), "u-1", tt.minutes)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStreak, stats.StreakDays)
			assert.Equal(t, tt.expectedToday, stats.TimeStudiedToday)
			assert.Equal(t, dayOffset(0), stats.LastActivityDate)
			assert.Equal(t, tt.minutes, f.progress.activity["2026-03-10"])
			if tt.expectedAward {
				assert.Contains(t, f.achievements.earned["u-1"], models.AchievementWeekStreak)
			} else {
				assert.Empty(t, f.achievements.earned["u-1"])
			}
		})
	}
}

func TestProgressService_RecordEnrollment(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()

	f.enroll("u-1", "c-py")
	awarded, err := f.service.RecordEnrollment(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{models.AchievementFirstCourse}, awarded)
	assert.Equal(t, 50, f.stats.stats["u-1"].TotalPoints)

	f.enroll("u-1", "c-ml")
	awarded, err = f.service.RecordEnrollment(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestProgressService_RecordQuizResult(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		highScores int
		expected   []string
	}{
		{name: "low score", score: 70, highScores: 9, expected: []string{}},
		{name: "fourth high score", score: 95, highScores: 4, expected: []string{}},
		{name: "fifth high score", score: 90, highScores: 5, expected: []string{models.AchievementQuizMaster}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture()
			require.NoError(t, f.stats.Create(context.Background(), "u-1", 30))
			f.quizScores.highScores = tt.highScores

			awarded, err := f.service.RecordQuizResult(context.Background(), "u-1", tt.score)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, awarded)
		})
	}
}

func TestProgressService_AwardAchievement(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	require.NoError(t, f.stats.Create(ctx, "u-1", 30))

	_, err := f.service.AwardAchievement(ctx, "u-1", "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "achievement not found")

	ok, err := f.service.AwardAchievement(ctx, "u-1", models.AchievementQuizMaster)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.AwardAchievement(ctx, "u-1", models.AchievementQuizMaster)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 200, f.stats.stats["u-1"].TotalPoints)
	assert.Equal(t, []string{events.TypeAchievementAwarded}, f.publisher.events)
}

func TestProgressService_AwardAchievement_PublishFailureIgnored(t *testing.T) {
	f := newProgressFixture()
	f.publisher.err = errors.New("nats down")
	require.NoError(t, f.stats.Create(context.Background(), "u-1", 30))

	ok, err := f.service.AwardAchievement(context.Background(), "u-1", models.AchievementFirstCourse)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProgressService_GetUserProgress(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	require.NoError(t, f.stats.Create(ctx, "u-1", 45))
	f.stats.stats["u-1"].TimeStudiedToday = 25
	f.stats.stats["u-1"].LastActivityDate = dayOffset(-1)
	f.enroll("u-1", "c-py")
	f.complete("u-1", "c-py", "l-1")

	progress, err := f.service.GetUserProgress(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"c-py"}, progress.EnrolledCourses)
	assert.Empty(t, progress.CompletedCourses)
	assert.Equal(t, 1, progress.CompletedLessons)
	assert.Zero(t, progress.TimeStudiedToday)
	assert.Equal(t, 45, progress.DailyGoalMinutes)
	assert.Equal(t, []string{"l-1"}, progress.CompletedLessonsByCourse["c-py"])
	assert.Equal(t, 10, progress.TimeSpentByCourse["c-py"])
}

func TestProgressService_GetUserProgress_CreatesStats(t *testing.T) {
	f := newProgressFixture()

	progress, err := f.service.GetUserProgress(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDailyGoalMinutes, progress.DailyGoalMinutes)
	assert.Equal(t, 1, progress.Level)
	assert.Contains(t, f.stats.stats, "new-user")
}

func TestProgressService_GetDetailedProgress(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	f.enroll("u-1", "c-py")
	f.complete("u-1", "c-py", "l-1")
	f.complete("u-1", "c-py", "l-2")
	f.progress.activity["2026-03-09"] = 20
	f.progress.activity["2026-03-10"] = 35
	f.progress.activity["2026-02-01"] = 90

	detailed, err := f.service.GetDetailedProgress(ctx, "u-1")
	require.NoError(t, err)

	require.Len(t, detailed.DailyStudyTime, 7)
	assert.Equal(t, "2026-03-04", detailed.DailyStudyTime[0].Date)
	assert.Equal(t, models.StudyDay{Date: "2026-03-09", Minutes: 20}, detailed.DailyStudyTime[5])
	assert.Equal(t, models.StudyDay{Date: "2026-03-10", Minutes: 35}, detailed.DailyStudyTime[6])
	assert.Equal(t, 10.0, detailed.AverageSessionLength)
	assert.InDelta(t, 20.0/60, detailed.TotalStudyHours, 0.001)
	assert.Zero(t, detailed.CompletionRate)
}

func TestProgressService_GetLearningAnalytics(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	require.NoError(t, f.stats.Create(ctx, "u-1", 30))
	f.stats.stats["u-1"].StreakDays = 15
	f.enroll("u-1", "c-py")
	f.complete("u-1", "c-py", "l-1")
	f.progress.activity["2026-03-08"] = 20
	f.progress.activity["2026-03-10"] = 45
	f.quizScores.average = 82.456

	analytics, err := f.service.GetLearningAnalytics(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, 32.5, analytics.StudyPatterns.AverageDailyTime)
	assert.Equal(t, 50.0, analytics.StudyPatterns.ConsistencyScore)
	assert.Equal(t, 82.5, analytics.PerformanceMetrics.AverageQuizScore)
	assert.InDelta(t, 1.0/9, analytics.PerformanceMetrics.LearningVelocity, 0.001)
	assert.Equal(t, 1, analytics.EngagementMetrics.CoursesEnrolled)
	assert.Equal(t, 1, analytics.EngagementMetrics.LessonsCompleted)
}
