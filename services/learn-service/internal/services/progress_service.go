package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

const (
	quizMasterScore       = 90
	quizMasterCount       = 5
	weekStreakDays        = 7
	speedLearnerCourses   = 3
	speedLearnerWindow    = 30 * 24 * time.Hour
	dailyStudyWindowDays  = 7
	averageDailyTimeDays  = 30
	consistencyStreakDays = 30
)

// UserStatsRepository is the interface that wraps methods for user_stats table data access
type UserStatsRepository interface {
	// Method Create inserts the stats row of a user if it does not exist yet.
	//
	// "userID" parameter is the owner of the row.
	// "dailyGoal" parameter is the daily study goal in minutes.
	//
	// If some error occurs during insertion, the error will be returned.
	Create(ctx context.Context, userID string, dailyGoal int) error
	// Method GetByUserID retrieves the stats row of a user.
	//
	// If the row does not exist, the "user stats not found" error will be returned together with "nil" value.
	GetByUserID(ctx context.Context, userID string) (*models.UserStats, error)
	// Method AddPoints increments the point total and raises the level when a threshold is crossed.
	AddPoints(ctx context.Context, userID string, points int) error
	// Method SaveActivity stores today's time, the streak, the last activity date and the total study time.
	SaveActivity(ctx context.Context, stats *models.UserStats) error
	// Method UpdateDailyGoal changes the daily goal.
	UpdateDailyGoal(ctx context.Context, userID string, minutes int) error
}

// ProgressRepository is the interface that wraps methods for lesson completions and study activity
type ProgressRepository interface {
	// Method CreateCompletion records a completed lesson.
	//
	// "false" is returned when the lesson had already been completed.
	CreateCompletion(ctx context.Context, c *models.LessonCompletion) (bool, error)
	// Method CountCompletedLessons counts the completed lessons of one course.
	CountCompletedLessons(ctx context.Context, userID, courseID string) (int, error)
	// Method GetCompletionsByUser lists every lesson completion of a user.
	GetCompletionsByUser(ctx context.Context, userID string) ([]models.LessonCompletion, error)
	// Method AddStudyMinutes adds minutes to the study activity of one day.
	AddStudyMinutes(ctx context.Context, userID string, day time.Time, minutes int) error
	// Method GetStudyActivity returns minutes keyed by YYYY-MM-DD from "from" onwards.
	GetStudyActivity(ctx context.Context, userID string, from time.Time) (map[string]int, error)
}

// AchievementRepository is the interface that wraps methods for user_achievements table data access
type AchievementRepository interface {
	// Method Create stores an earned achievement.
	//
	// "false" is returned when the user already had it.
	Create(ctx context.Context, userID, achievementID string) (bool, error)
	// Method GetByUser lists a user's achievements in the order they were earned.
	GetByUser(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// EnrollmentRepository is the interface that wraps methods for enrollments table data access
type EnrollmentRepository interface {
	// Method Create enrolls a user.
	//
	// If the user is already enrolled, the "already enrolled" error will be returned.
	Create(ctx context.Context, userID, courseID string) error
	// Method Exists checks whether a user is enrolled in a course.
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	// Method Get retrieves one enrollment.
	//
	// If the user is not enrolled, the "enrollment not found" error will be returned together with "nil" value.
	Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	// Method GetByUser retrieves a user's enrollments in enrollment order.
	GetByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
	// Method UpdateProgress stores the progress percentage and, once, the completion time.
	UpdateProgress(ctx context.Context, userID, courseID string, percentage float64, completedAt *time.Time) error
	// Method CountCompletedSince counts courses completed at or after "since".
	CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// QuizScoreRepository exposes the aggregates of quiz results used by progress tracking
type QuizScoreRepository interface {
	// CountScoresAtLeast counts results scoring at least minScore
	CountScoresAtLeast(ctx context.Context, userID string, minScore float64) (int, error)
	// AverageScore returns the mean score of a user, 0 without results
	AverageScore(ctx context.Context, userID string) (float64, error)
}

// LessonSource resolves courses and their lessons
type LessonSource interface {
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	GetLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
}

// InteractionRecorder records user interactions with courses
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, userID, interactionType, courseID, category string) error
}

// progressService implements ProgressService
type progressService struct {
	statsRepo       UserStatsRepository
	progressRepo    ProgressRepository
	achievementRepo AchievementRepository
	enrollmentRepo  EnrollmentRepository
	quizScores      QuizScoreRepository
	lessons         LessonSource
	interactions    InteractionRecorder
	publisher       events.Publisher
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	statsRepo UserStatsRepository,
	progressRepo ProgressRepository,
	achievementRepo AchievementRepository,
	enrollmentRepo EnrollmentRepository,
	quizScores QuizScoreRepository,
	lessons LessonSource,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		statsRepo:       statsRepo,
		progressRepo:    progressRepo,
		achievementRepo: achievementRepo,
		enrollmentRepo:  enrollmentRepo,
		quizScores:      quizScores,
		lessons:         lessons,
		publisher:       publisher,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

// SetInteractionRecorder wires the recommendation engine after construction,
// since it is built on top of the progress service.
func (s *progressService) SetInteractionRecorder(recorder InteractionRecorder) {
	s.interactions = recorder
}

// today returns the current calendar day as UTC midnight, which is how DATE columns round-trip
func (s *progressService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ensureStats returns the stats row of a user, creating it with the default goal when missing
func (s *progressService) ensureStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !strings.Contains(err.Error(), "not found") {
		return nil, err
	}

	if err := s.statsRepo.Create(ctx, userID, models.DefaultDailyGoalMinutes); err != nil {
		return nil, err
	}
	return s.statsRepo.GetByUserID(ctx, userID)
}

// GetUserProgress aggregates the progress of a user
func (s *progressService) GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	stats, err := s.ensureStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.progressRepo.GetCompletionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := &models.UserProgress{
		EnrolledCourses:          make([]string, 0, len(enrollments)),
		CompletedCourses:         []string{},
		CompletedLessons:         len(completions),
		TotalPoints:              stats.TotalPoints,
		Level:                    stats.Level,
		StreakDays:               stats.StreakDays,
		TimeStudiedToday:         stats.TimeStudiedToday,
		DailyGoalMinutes:         stats.DailyGoalMinutes,
		CourseProgress:           make(map[string]float64, len(enrollments)),
		CompletedLessonsByCourse: make(map[string][]string, len(enrollments)),
		TimeSpentByCourse:        make(map[string]int, len(enrollments)),
		LastActivity:             stats.LastActivityDate,
		CreatedAt:                stats.CreatedAt,
	}

	// A row last touched on a previous day has not been reset yet
	if stats.LastActivityDate != nil && stats.LastActivityDate.Before(s.today()) {
		progress.TimeStudiedToday = 0
	}

	for _, e := range enrollments {
		progress.EnrolledCourses = append(progress.EnrolledCourses, e.CourseID)
		progress.CourseProgress[e.CourseID] = e.ProgressPercentage
		progress.CompletedLessonsByCourse[e.CourseID] = []string{}
		progress.TimeSpentByCourse[e.CourseID] = 0
		if e.CompletedAt != nil {
			progress.CompletedCourses = append(progress.CompletedCourses, e.CourseID)
		}
	}

	for _, c := range completions {
		progress.CompletedLessonsByCourse[c.CourseID] = append(progress.CompletedLessonsByCourse[c.CourseID], c.LessonID)
		progress.TimeSpentByCourse[c.CourseID] += c.TimeSpentMinutes
	}

	return progress, nil
}

// RecordEnrollment runs the progress side effects of a new enrollment
func (s *progressService) RecordEnrollment(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.ensureStats(ctx, userID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []string
	if len(enrollments) == 1 {
		awarded = s.awardQuietly(ctx, userID, models.AchievementFirstCourse, awarded)
	}
	return awarded, nil
}

// CompleteLesson marks a lesson as completed and applies points, course progress and achievements
func (s *progressService) CompleteLesson(ctx context.Context, userID, courseID, lessonID string, timeSpent int) (*models.CompleteLessonResult, error) {
	if timeSpent < 0 {
		return nil, fmt.Errorf("time spent must not be negative")
	}

	enrollment, err := s.enrollmentRepo.Get(ctx, userID, courseID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("user is not enrolled in this course")
		}
		return nil, err
	}

	lessons, err := s.lessons.GetLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !containsLesson(lessons, lessonID) {
		return nil, fmt.Errorf("lesson not found")
	}

	created, err := s.progressRepo.CreateCompletion(ctx, &models.LessonCompletion{
		UserID:           userID,
		CourseID:         courseID,
		LessonID:         lessonID,
		CompletedAt:      s.now(),
		TimeSpentMinutes: timeSpent,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &models.CompleteLessonResult{
			Completed:          false,
			ProgressPercentage: enrollment.ProgressPercentage,
			CourseCompleted:    enrollment.CompletedAt != nil,
			NewAchievements:    []string{},
		}, nil
	}

	if _, err := s.ensureStats(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.statsRepo.AddPoints(ctx, userID, models.LessonPoints); err != nil {
		return nil, err
	}
	s.metrics.LessonsCompleted.Inc()

	result := &models.CompleteLessonResult{
		Completed:       true,
		PointsEarned:    models.LessonPoints,
		NewAchievements: []string{},
	}

	if timeSpent > 0 {
		_, awarded, err := s.updateActivity(ctx, userID, timeSpent)
		if err != nil {
			return nil, err
		}
		result.NewAchievements = append(result.NewAchievements, awarded...)
	}

	completed, err := s.progressRepo.CountCompletedLessons(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	result.ProgressPercentage = math.Min(float64(completed)/float64(len(lessons))*100, 100)

	newlyCompleted := result.ProgressPercentage >= 100 && enrollment.CompletedAt == nil
	var completedAt *time.Time
	if newlyCompleted {
		now := s.now()
		completedAt = &now
	}
	if err := s.enrollmentRepo.UpdateProgress(ctx, userID, courseID, result.ProgressPercentage, completedAt); err != nil {
		return nil, err
	}
	result.CourseCompleted = result.ProgressPercentage >= 100

	if newlyCompleted {
		if err := s.statsRepo.AddPoints(ctx, userID, models.CourseCompletionPoints); err != nil {
			return nil, err
		}
		result.PointsEarned += models.CourseCompletionPoints
		result.NewAchievements = s.awardQuietly(ctx, userID, models.AchievementFirstCompletion, result.NewAchievements)
		s.onCourseCompleted(ctx, userID, courseID)

		recent, err := s.enrollmentRepo.CountCompletedSince(ctx, userID, s.now().Add(-speedLearnerWindow))
		if err != nil {
			return nil, err
		}
		if recent >= speedLearnerCourses {
			result.NewAchievements = s.awardQuietly(ctx, userID, models.AchievementSpeedLearner, result.NewAchievements)
		}
	}

	for _, id := range result.NewAchievements {
		if def, ok := models.FindAchievement(id); ok {
			result.PointsEarned += def.Points
		}
	}

	return result, nil
}

func containsLesson(lessons []models.Lesson, lessonID string) bool {
	for _, l := range lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}

// onCourseCompleted records the completion interaction and publishes the event.
// Failures are logged, the completion itself is already stored.
func (s *progressService) onCourseCompleted(ctx context.Context, userID, courseID string) {
	course, err := s.lessons.GetByID(ctx, courseID)
	if err != nil {
		s.logger.Warn("failed to load completed course", zap.Error(err), zap.String("courseId", courseID))
		return
	}

	if s.interactions != nil {
		if err := s.interactions.RecordInteraction(ctx, userID, models.InteractionComplete, courseID, course.Category); err != nil {
			s.logger.Warn("failed to record completion interaction", zap.Error(err), zap.String("userId", userID))
		}
	}

	err = s.publisher.Publish(ctx, events.TypeCourseCompleted, events.CourseCompleted{
		UserID:   userID,
		CourseID: courseID,
		Title:    course.Title,
	})
	if err != nil {
		s.logger.Warn("failed to publish course completion", zap.Error(err), zap.String("userId", userID))
	}
}

// UpdateDailyActivity adds study minutes to today and maintains the streak
func (s *progressService) UpdateDailyActivity(ctx context.Context, userID string, minutes int) (*models.UserStats, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("minutes must be positive")
	}
	stats, _, err := s.updateActivity(ctx, userID, minutes)
	return stats, err
}

func (s *progressService) updateActivity(ctx context.Context, userID string, minutes int) (*models.UserStats, []string, error) {
	stats, err := s.ensureStats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	today := s.today()
	if stats.LastActivityDate == nil {
		stats.StreakDays = 1
		stats.TimeStudiedToday = 0
	} else {
		last := *stats.LastActivityDate
		last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
		switch days := int(today.Sub(last).Hours() / 24); {
		case days == 0:
		case days == 1:
			stats.StreakDays++
			stats.TimeStudiedToday = 0
		default:
			stats.StreakDays = 1
			stats.TimeStudiedToday = 0
		}
	}

	stats.TimeStudiedToday += minutes
	stats.TotalStudyTime += minutes
	stats.LastActivityDate = &today

	if err := s.statsRepo.SaveActivity(ctx, stats); err != nil {
		return nil, nil, err
	}
	if err := s.progressRepo.AddStudyMinutes(ctx, userID, today, minutes); err != nil {
		return nil, nil, err
	}

	var awarded []string
	if stats.StreakDays >= weekStreakDays {
		awarded = s.awardQuietly(ctx, userID, models.AchievementWeekStreak, awarded)
	}
	return stats, awarded, nil
}

// AwardAchievement gives an achievement to a user once.
// It returns false when the user already has it.
func (s *progressService) AwardAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	def, ok := models.FindAchievement(achievementID)
	if !ok {
		return false, fmt.Errorf("achievement not found")
	}

	created, err := s.achievementRepo.Create(ctx, userID, achievementID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if err := s.statsRepo.AddPoints(ctx, userID, def.Points); err != nil {
		return false, err
	}
	s.metrics.AchievementsAwarded.WithLabelValues(achievementID).Inc()

	err = s.publisher.Publish(ctx, events.TypeAchievementAwarded, events.AchievementAwarded{
		UserID:        userID,
		AchievementID: def.ID,
		Title:         def.Title,
		Description:   def.Description,
		Points:        def.Points,
	})
	if err != nil {
		s.logger.Warn("failed to publish achievement", zap.Error(err), zap.String("userId", userID))
	}

	s.logger.Info("achievement awarded", zap.String("userId", userID), zap.String("achievement", achievementID))
	return true, nil
}

// awardQuietly awards an achievement as a side effect, appending its id to awarded on success
func (s *progressService) awardQuietly(ctx context.Context, userID, achievementID string, awarded []string) []string {
	ok, err := s.AwardAchievement(ctx, userID, achievementID)
	if err != nil {
		s.logger.Warn("failed to award achievement", zap.Error(err),
			zap.String("userId", userID), zap.String("achievement", achievementID))
		return awarded
	}
	if ok {
		awarded = append(awarded, achievementID)
	}
	return awarded
}

// RecordQuizResult applies quiz based achievements after a result was stored
func (s *progressService) RecordQuizResult(ctx context.Context, userID string, scorePercentage float64) ([]string, error) {
	if scorePercentage < quizMasterScore {
		return []string{}, nil
	}

	count, err := s.quizScores.CountScoresAtLeast(ctx, userID, quizMasterScore)
	if err != nil {
		return nil, err
	}

	awarded := []string{}
	if count >= quizMasterCount {
		awarded = s.awardQuietly(ctx, userID, models.AchievementQuizMaster, awarded)
	}
	return awarded, nil
}

// GetDetailedProgress extends the progress view with derived metrics
func (s *progressService) GetDetailedProgress(ctx context.Context, userID string) (*models.DetailedProgress, error) {
	progress, err := s.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	from := today.AddDate(0, 0, -(dailyStudyWindowDays - 1))
	activity, err := s.progressRepo.GetStudyActivity(ctx, userID, from)
	if err != nil {
		return nil, err
	}

	daily := make([]models.StudyDay, 0, dailyStudyWindowDays)
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		daily = append(daily, models.StudyDay{Date: key, Minutes: activity[key]})
	}

	achievements, err := s.achievementRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalTime := sumValues(progress.TimeSpentByCourse)
	averageSession := 0.0
	if progress.CompletedLessons > 0 {
		averageSession = float64(totalTime) / float64(progress.CompletedLessons)
	}

	return &models.DetailedProgress{
		BasicStats:           progress,
		CompletionRate:       completionRate(progress),
		DailyStudyTime:       daily,
		Achievements:         achievements,
		TotalStudyHours:      float64(totalTime) / 60,
		AverageSessionLength: averageSession,
		LearningEfficiency:   learningEfficiency(progress),
	}, nil
}

// GetLearningAnalytics summarizes study patterns, performance and engagement
func (s *progressService) GetLearningAnalytics(ctx context.Context, userID string) (*models.LearningAnalytics, error) {
	progress, err := s.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity, err := s.progressRepo.GetStudyActivity(ctx, userID, s.today().AddDate(0, 0, -(averageDailyTimeDays-1)))
	if err != nil {
		return nil, err
	}

	averageQuiz, err := s.quizScores.AverageScore(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.achievementRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	averageDaily := 0.0
	if len(activity) > 0 {
		averageDaily = roundTo(float64(sumValues(activity))/float64(len(activity)), 1)
	}

	days := int(s.now().Sub(progress.CreatedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}

	enrolled := len(progress.EnrolledCourses)
	if enrolled < 1 {
		enrolled = 1
	}

	return &models.LearningAnalytics{
		StudyPatterns: models.StudyPatterns{
			TotalTime:        sumValues(progress.TimeSpentByCourse),
			AverageDailyTime: averageDaily,
			ConsistencyScore: math.Min(float64(progress.StreakDays)/consistencyStreakDays*100, 100),
		},
		PerformanceMetrics: models.PerformanceMetrics{
			CompletionRate:   float64(len(progress.CompletedCourses)) / float64(enrolled) * 100,
			AverageQuizScore: roundTo(averageQuiz, 1),
			LearningVelocity: float64(progress.CompletedLessons) / float64(days),
		},
		EngagementMetrics: models.EngagementMetrics{
			CoursesEnrolled:    len(progress.EnrolledCourses),
			LessonsCompleted:   progress.CompletedLessons,
			AchievementsEarned: len(achievements),
			CurrentLevel:       progress.Level,
		},
	}, nil
}

// GetAchievementDefinitions returns every achievement that can be earned
func (s *progressService) GetAchievementDefinitions() []models.Achievement {
	defs := make([]models.Achievement, len(models.Achievements))
	copy(defs, models.Achievements)
	return defs
}

// GetUserAchievements returns the achievements a user earned
func (s *progressService) GetUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	return s.achievementRepo.GetByUser(ctx, userID)
}

func completionRate(p *models.UserProgress) float64 {
	if len(p.EnrolledCourses) == 0 {
		return 0
	}
	return float64(len(p.CompletedCourses)) / float64(len(p.EnrolledCourses)) * 100
}

func learningEfficiency(p *models.UserProgress) float64 {
	streakFactor := math.Min(float64(p.StreakDays)/consistencyStreakDays, 1)
	completionFactor := completionRate(p) / 100
	return math.Min((streakFactor*0.4+completionFactor*0.6)*100, 100)
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// sortedKeys returns the keys of m in ascending order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
