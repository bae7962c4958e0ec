package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edulearn/platform/services/learn-service/internal/models"
)

// fixedNow is the clock used by service tests
var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func dayOffset(days int) *time.Time {
	d := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &d
}

// mockStatsRepository is an in-memory UserStatsRepository
type mockStatsRepository struct {
	stats map[string]*models.UserStats
	saved int
	err   error
}

func newMockStatsRepository() *mockStatsRepository {
	return &mockStatsRepository{stats: map[string]*models.UserStats{}}
}

func (m *mockStatsRepository) Create(ctx context.Context, userID string, dailyGoal int) error {
	if m.err != nil {
		return m.err
	}
	m.stats[userID] = &models.UserStats{UserID: userID, Level: 1, DailyGoalMinutes: dailyGoal, CreatedAt: fixedNow.AddDate(0, 0, -9)}
	return nil
}

func (m *mockStatsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.stats[userID]
	if !ok {
		return nil, fmt.Errorf("user stats not found")
	}
	copied := *s
	return &copied, nil
}

func (m *mockStatsRepository) AddPoints(ctx context.Context, userID string, points int) error {
	if m.err != nil {
		return m.err
	}
	s, ok := m.stats[userID]
	if !ok {
		return fmt.Errorf("user stats not found")
	}
	s.TotalPoints += points
	s.Level = models.LevelFor(s.TotalPoints)
	return nil
}

func (m *mockStatsRepository) SaveActivity(ctx context.Context, stats *models.UserStats) error {
	if m.err != nil {
		return m.err
	}
	s := m.stats[stats.UserID]
	s.StreakDays = stats.StreakDays
	s.TimeStudiedToday = stats.TimeStudiedToday
	s.TotalStudyTime = stats.TotalStudyTime
	s.LastActivityDate = stats.LastActivityDate
	m.saved++
	return nil
}

func (m *mockStatsRepository) UpdateDailyGoal(ctx context.Context, userID string, minutes int) error {
	if m.err != nil {
		return m.err
	}
	s, ok := m.stats[userID]
	if !ok {
		return fmt.Errorf("user stats not found")
	}
	s.DailyGoalMinutes = minutes
	return nil
}

// mockProgressRepository is an in-memory ProgressRepository
type mockProgressRepository struct {
	completions []models.LessonCompletion
	activity    map[string]int
	recent      int
	err         error
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{activity: map[string]int{}}
}

func (m *mockProgressRepository) CreateCompletion(ctx context.Context, c *models.LessonCompletion) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, existing := range m.completions {
		if existing.UserID == c.UserID && existing.CourseID == c.CourseID && existing.LessonID == c.LessonID {
			return false, nil
		}
	}
	m.completions = append(m.completions, *c)
	return true, nil
}

func (m *mockProgressRepository) CountCompletedLessons(ctx context.Context, userID, courseID string) (int, error) {
	count := 0
	for _, c := range m.completions {
		if c.UserID == userID && c.CourseID == courseID {
			count++
		}
	}
	return count, m.err
}

func (m *mockProgressRepository) GetCompletionsByUser(ctx context.Context, userID string) ([]models.LessonCompletion, error) {
	var out []models.LessonCompletion
	for _, c := range m.completions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, m.err
}

func (m *mockProgressRepository) CountCompletionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return m.recent, m.err
}

func (m *mockProgressRepository) AddStudyMinutes(ctx context.Context, userID string, day time.Time, minutes int) error {
	if m.err != nil {
		return m.err
	}
	m.activity[day.Format(time.DateOnly)] += minutes
	return nil
}

func (m *mockProgressRepository) GetStudyActivity(ctx context.Context, userID string, from time.Time) (map[string]int, error) {
	out := map[string]int{}
	for day, minutes := range m.activity {
		if day >= from.Format(time.DateOnly) {
			out[day] = minutes
		}
	}
	return out, m.err
}

// mockAchievementRepository is an in-memory AchievementRepository
type mockAchievementRepository struct {
	earned map[string][]string
	err    error
}

func newMockAchievementRepository() *mockAchievementRepository {
	return &mockAchievementRepository{earned: map[string][]string{}}
}

func (m *mockAchievementRepository) Create(ctx context.Context, userID, achievementID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, id := range m.earned[userID] {
		if id == achievementID {
			return false, nil
		}
	}
	m.earned[userID] = append(m.earned[userID], achievementID)
	return true, nil
}

func (m *mockAchievementRepository) GetByUser(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	out := []models.UserAchievement{}
	for _, id := range m.earned[userID] {
		def, _ := models.FindAchievement(id)
		out = append(out, models.UserAchievement{Achievement: def, EarnedAt: fixedNow})
	}
	return out, m.err
}

// mockEnrollmentRepository is an in-memory EnrollmentRepository
type mockEnrollmentRepository struct {
	enrollments     []*models.Enrollment
	completedRecent int
	err             error
}

func (m *mockEnrollmentRepository) find(userID, courseID string) *models.Enrollment {
	for _, e := range m.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, userID, courseID string) error {
	if m.err != nil {
		return m.err
	}
	if m.find(userID, courseID) != nil {
		return fmt.Errorf("already enrolled")
	}
	m.enrollments = append(m.enrollments, &models.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: fixedNow})
	return nil
}

func (m *mockEnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	return m.find(userID, courseID) != nil, m.err
}

func (m *mockEnrollmentRepository) Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	e := m.find(userID, courseID)
	if e == nil {
		return nil, fmt.Errorf("enrollment not found")
	}
	copied := *e
	return &copied, nil
}

func (m *mockEnrollmentRepository) GetByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Enrollment{}
	for _, e := range m.enrollments {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, percentage float64, completedAt *time.Time) error {
	if m.err != nil {
		return m.err
	}
	e := m.find(userID, courseID)
	if e == nil {
		return fmt.Errorf("enrollment not found")
	}
	e.ProgressPercentage = percentage
	if completedAt != nil {
		e.CompletedAt = completedAt
	}
	return nil
}

func (m *mockEnrollmentRepository) CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return m.completedRecent, m.err
}

// mockQuizScores is a fixed QuizScoreRepository
type mockQuizScores struct {
	highScores int
	average    float64
	err        error
}

func (m *mockQuizScores) CountScoresAtLeast(ctx context.Context, userID string, minScore float64) (int, error) {
	return m.highScores, m.err
}

func (m *mockQuizScores) AverageScore(ctx context.Context, userID string) (float64, error) {
	return m.average, m.err
}

// mockCourseRepository is an in-memory course store serving CourseRepository, LessonSource and CatalogReader
type mockCourseRepository struct {
	courses     []models.Course
	lessons     map[string][]models.Lesson
	enrollments map[string]int
	created     []*models.Course
	err         error
}

func (m *mockCourseRepository) Count(ctx context.Context) (int, error) {
	return len(m.courses) + len(m.created), m.err
}

func (m *mockCourseRepository) CreateWithLessons(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, course)
	return nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.courses {
		if c.ID == courseID {
			copied := c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("course not found")
}

func (m *mockCourseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Course(nil), m.courses...), nil
}

func (m *mockCourseRepository) GetCategories(ctx context.Context) ([]string, error) {
	set := map[string]struct{}{}
	for _, c := range m.courses {
		set[c.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, m.err
}

func (m *mockCourseRepository) GetLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons[courseID], nil
}

func (m *mockCourseRepository) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	return m.enrollments[courseID], m.err
}

// testCatalog returns three courses, "c-py" having three lessons
func testCatalog() *mockCourseRepository {
	return &mockCourseRepository{
		courses: []models.Course{
			{ID: "c-py", Title: "Python Programming Fundamentals", Description: "Learn Python basics", Category: "Technology",
				Difficulty: models.DifficultyBeginner, EstimatedHours: 20, Rating: 4.8, Tags: models.StringList{"python", "programming"}},
			{ID: "c-ml", Title: "Introduction to Machine Learning", Description: "Supervised learning and models", Category: "Technology",
				Difficulty: models.DifficultyIntermediate, EstimatedHours: 40, Rating: 4.7, Tags: models.StringList{"machine learning", "visualization"}},
			{ID: "c-calc", Title: "Calculus I: Limits and Derivatives", Description: "Limits, derivatives and their applications", Category: "Mathematics",
				Difficulty: models.DifficultyAdvanced, EstimatedHours: 50, Rating: 4.4, Tags: models.StringList{"calculus", "hands-on"}},
		},
		lessons: map[string][]models.Lesson{
			"c-py": {
				{ID: "l-1", CourseID: "c-py", Position: 1, Title: "Variables"},
				{ID: "l-2", CourseID: "c-py", Position: 2, Title: "Functions"},
				{ID: "l-3", CourseID: "c-py", Position: 3, Title: "Classes"},
			},
		},
		enrollments: map[string]int{"c-py": 12},
	}
}

// mockInteractionRecorder records RecordInteraction calls
type mockInteractionRecorder struct {
	calls []string
	err   error
}

func (m *mockInteractionRecorder) RecordInteraction(ctx context.Context, userID, interactionType, courseID, category string) error {
	m.calls = append(m.calls, interactionType+":"+courseID+":"+category)
	return m.err
}

// mockPublisher records published events
type mockPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	return m.err
}

// mockUserRepository is an in-memory UserRepository
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("username already exists")
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockUserRepository) update(userID string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	fn(u)
	return nil
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return m.update(userID, func(u *models.User) { u.LastLogin = &at })
}

func (m *mockUserRepository) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	return m.update(userID, func(u *models.User) { u.Preferences = prefs })
}

func (m *mockUserRepository) UpdateAccount(ctx context.Context, userID, email, passwordHash string) error {
	return m.update(userID, func(u *models.User) {
		u.Email = email
		u.PasswordHash = passwordHash
	})
}

func (m *mockUserRepository) Deactivate(ctx context.Context, userID string) error {
	return m.update(userID, func(u *models.User) { u.IsActive = false })
}

// mockTokenRepository is an in-memory UserTokenRepository
type mockTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]string // token -> user id
	err    error
}

func newMockTokenRepository() *mockTokenRepository {
	return &mockTokenRepository{tokens: map[string]string{}}
}

func (m *mockTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tokens[userToken.Token] = userToken.UserID
	return nil
}

func (m *mockTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	userID, ok := m.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found")
	}
	return &models.UserToken{UserID: userID, Token: token}, nil
}

func (m *mockTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, ok := m.tokens[oldToken]; !ok || owner != userID {
		return fmt.Errorf("token not found or user mismatch")
	}
	delete(m.tokens, oldToken)
	m.tokens[newToken] = userID
	return nil
}

func (m *mockTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *mockTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, owner := range m.tokens {
		if owner == userID {
			delete(m.tokens, token)
		}
	}
	return nil
}

func (m *mockTokenRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// mockQuizRepository is an in-memory QuizRepository
type mockQuizRepository struct {
	quizzes map[string]*models.Quiz
	err     error
}

func newMockQuizRepository() *mockQuizRepository {
	return &mockQuizRepository{quizzes: map[string]*models.Quiz{}}
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *mockQuizRepository) GetByID(ctx context.Context, quizID string) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("quiz not found")
	}
	return q, nil
}

// mockQuizResultRepository is an in-memory QuizResultRepository
type mockQuizResultRepository struct {
	results []models.QuizResult
	err     error
}

func (m *mockQuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, *result)
	return nil
}

func (m *mockQuizResultRepository) GetByUser(ctx context.Context, userID string) ([]models.QuizResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.QuizResult
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockQuizProgress records quiz scores passed to progress
type mockQuizProgress struct {
	scores  []float64
	awarded []string
	err     error
}

func (m *mockQuizProgress) RecordQuizResult(ctx context.Context, userID string, scorePercentage float64) ([]string, error) {
	m.scores = append(m.scores, scorePercentage)
	return m.awarded, m.err
}

// mockInteractionRepository is an in-memory InteractionRepository
type mockInteractionRepository struct {
	interactions []models.Interaction
	counts       []models.CategoryCount
	err          error
}

func (m *mockInteractionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	if m.err != nil {
		return m.err
	}
	m.interactions = append(m.interactions, *interaction)
	return nil
}

func (m *mockInteractionRepository) CountByCategory(ctx context.Context, userID string) ([]models.CategoryCount, error) {
	return m.counts, m.err
}

// mockRecommendationCache is an in-memory RecommendationCache
type mockRecommendationCache struct {
	sets    map[string]*models.RecommendationSet
	deleted []string
	getErr  error
}

func newMockRecommendationCache() *mockRecommendationCache {
	return &mockRecommendationCache{sets: map[string]*models.RecommendationSet{}}
}

func (m *mockRecommendationCache) Get(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.sets[userID], nil
}

func (m *mockRecommendationCache) Set(ctx context.Context, set *models.RecommendationSet, ttl time.Duration) error {
	m.sets[set.UserID] = set
	return nil
}

func (m *mockRecommendationCache) Delete(ctx context.Context, userID string) error {
	m.deleted = append(m.deleted, userID)
	delete(m.sets, userID)
	return nil
}

// mockInvalidator records invalidated users
type mockInvalidator struct {
	users []string
}

func (m *mockInvalidator) InvalidateRecommendations(ctx context.Context, userID string) {
	m.users = append(m.users, userID)
}
