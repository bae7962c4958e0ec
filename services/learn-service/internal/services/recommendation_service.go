package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

const (
	maxRecommendations     = 10
	adaptiveWindow         = 7 * 24 * time.Hour
	defaultRetentionScore  = 0.8
	preferredContentTypes  = 3
	highRatingThreshold    = 4.5
	interactionWeight      = 0.1
	slowCompletionsPerWeek = 2
	fastCompletionsPerWeek = 5
)

var supplementaryMaterials = []string{
	"Practice exercises for better understanding",
	"Video tutorials for visual learning",
	"Interactive coding examples",
}

// InteractionRepository is the interface that wraps methods for user_interactions table data access
type InteractionRepository interface {
	// Method Create records an interaction.
	//
	// "interaction" parameter is the interaction to store.
	//
	// If some error occurs during insertion, the error will be returned.
	Create(ctx context.Context, interaction *models.Interaction) error
	// Method CountByCategory returns interaction counts per category, most frequent first.
	//
	// "userID" parameter is the owner of the interactions.
	//
	// If some error occurs during the query, the error will be returned together with "nil" value.
	CountByCategory(ctx context.Context, userID string) ([]models.CategoryCount, error)
}

// RecommendationCache stores generated recommendations per user.
// Get returns nil without error on a miss.
type RecommendationCache interface {
	Get(ctx context.Context, userID string) (*models.RecommendationSet, error)
	Set(ctx context.Context, set *models.RecommendationSet, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// UserReader loads users by id
type UserReader interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// CatalogReader reads the course catalog
type CatalogReader interface {
	GetAll(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	GetLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
}

// CompletionCounter counts recent lesson completions and lists completed lessons
type CompletionCounter interface {
	CountCompletionsSince(ctx context.Context, userID string, since time.Time) (int, error)
	GetCompletionsByUser(ctx context.Context, userID string) ([]models.LessonCompletion, error)
}

// recommendationService implements RecommendationService
type recommendationService struct {
	userRepo        UserReader
	courseRepo      CatalogReader
	enrollmentRepo  EnrollmentRepository
	interactionRepo InteractionRepository
	completions     CompletionCounter
	cache           RecommendationCache
	cacheTTL        time.Duration
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewRecommendationService creates a new recommendation service.
// A nil cache disables caching.
func NewRecommendationService(
	userRepo UserReader,
	courseRepo CatalogReader,
	enrollmentRepo EnrollmentRepository,
	interactionRepo InteractionRepository,
	completions CompletionCounter,
	cache RecommendationCache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *recommendationService {
	return &recommendationService{
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		enrollmentRepo:  enrollmentRepo,
		interactionRepo: interactionRepo,
		completions:     completions,
		cache:           cache,
		cacheTTL:        cacheTTL,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

// GetPersonalizedRecommendations scores unenrolled courses against the user's preferences and history.
// Results are served from the cache while it is fresh.
func (s *recommendationService) GetPersonalizedRecommendations(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	if cached := s.cached(ctx, userID); cached != nil {
		return cached, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = struct{}{}
	}

	counts, err := s.interactionRepo.CountByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	categoryCounts := make(map[string]int, len(counts))
	for _, c := range counts {
		categoryCounts[c.Category] = c.Count
	}

	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	recommendations := []models.Recommendation{}
	for i := range courses {
		course := &courses[i]
		if _, ok := enrolled[course.ID]; ok {
			continue
		}

		score := recommendationScore(course, user.Preferences, categoryCounts)
		if score <= 0 {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Course:     course,
			Score:      roundTo(score, 2),
			Confidence: math.Min(score/10, 1),
			Reason:     recommendationReason(course, user.Preferences),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	set := &models.RecommendationSet{
		UserID:          userID,
		Recommendations: recommendations,
		GeneratedAt:     s.now().UTC(),
	}
	s.store(ctx, set)

	return set, nil
}

func (s *recommendationService) cached(ctx context.Context, userID string) *models.RecommendationSet {
	if s.cache == nil {
		return nil
	}

	set, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read recommendation cache", zap.Error(err), zap.String("userId", userID))
		s.metrics.RecommendationCache.WithLabelValues("error").Inc()
		return nil
	}
	if set == nil {
		s.metrics.RecommendationCache.WithLabelValues("miss").Inc()
		return nil
	}

	s.metrics.RecommendationCache.WithLabelValues("hit").Inc()
	return set
}

func (s *recommendationService) store(ctx context.Context, set *models.RecommendationSet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, set, s.cacheTTL); err != nil {
		s.logger.Warn("failed to write recommendation cache", zap.Error(err), zap.String("userId", set.UserID))
	}
}

// InvalidateRecommendations drops the cached recommendations of a user
func (s *recommendationService) InvalidateRecommendations(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate recommendation cache", zap.Error(err), zap.String("userId", userID))
	}
}

// recommendationScore implements the weighted personalization score
func recommendationScore(course *models.Course, prefs models.Preferences, categoryCounts map[string]int) float64 {
	score := course.Rating * 2

	category := strings.ToLower(course.Category)
	title := strings.ToLower(course.Title)
	description := strings.ToLower(course.Description)

	for _, interest := range prefs.Interests {
		interest = strings.ToLower(interest)
		if interest == "" {
			continue
		}
		if strings.Contains(category, interest) {
			score += 3
		}
		for _, tag := range course.Tags {
			if strings.Contains(strings.ToLower(tag), interest) {
				score += 2
			}
		}
		if strings.Contains(title, interest) || strings.Contains(description, interest) {
			score++
		}
	}

	difficulty := prefs.DifficultyPreference
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if course.Difficulty == difficulty {
		score += 2
	} else if difficulty == models.DifficultyMixed {
		score++
	}

	switch {
	case prefs.LearningStyle == "Visual" && hasTag(course, "visualization"):
		score++
	case prefs.LearningStyle == "Kinesthetic" && hasTag(course, "hands-on"):
		score++
	}

	if matchesStudyTime(prefs.StudyTime, course.EstimatedHours) {
		score++
	}

	if course.Rating >= highRatingThreshold {
		score += 0.5
	}

	score += float64(categoryCounts[course.Category]) * interactionWeight

	return score
}

func hasTag(course *models.Course, tag string) bool {
	for _, t := range course.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// matchesStudyTime pairs the preferred session length with a course length bucket
func matchesStudyTime(studyTime string, hours int) bool {
	switch studyTime {
	case "15-30 minutes":
		return hours <= 15
	case "", "30-60 minutes":
		return hours > 15 && hours <= 30
	case "1-2 hours":
		return hours > 30 && hours <= 50
	case "2+ hours":
		return hours > 50
	}
	return false
}

func recommendationReason(course *models.Course, prefs models.Preferences) string {
	category := strings.ToLower(course.Category)
	for _, interest := range prefs.Interests {
		if interest != "" && strings.Contains(category, strings.ToLower(interest)) {
			return "Matches your interest in " + interest
		}
	}

	difficulty := prefs.DifficultyPreference
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if course.Difficulty == difficulty {
		return fmt.Sprintf("Perfect for your %s level", strings.ToLower(course.Difficulty))
	}

	if course.Rating >= highRatingThreshold {
		return fmt.Sprintf("Highly rated (%s/5 stars)", strconv.FormatFloat(course.Rating, 'f', -1, 64))
	}

	return "Based on your learning preferences"
}

// RecordInteraction stores a view, enroll or complete interaction and invalidates cached recommendations
func (s *recommendationService) RecordInteraction(ctx context.Context, userID, interactionType, courseID, category string) error {
	switch interactionType {
	case models.InteractionView, models.InteractionEnroll, models.InteractionComplete:
	default:
		return fmt.Errorf("invalid interaction type: %s", interactionType)
	}

	err := s.interactionRepo.Create(ctx, &models.Interaction{
		UserID:   userID,
		Type:     interactionType,
		CourseID: courseID,
		Category: category,
	})
	if err != nil {
		return err
	}

	s.InvalidateRecommendations(ctx, userID)
	return nil
}

// GetLearningPath builds a beginner to advanced sequence of courses matching a skill
func (s *recommendationService) GetLearningPath(ctx context.Context, targetSkill string) ([]models.LearningPathStep, error) {
	skill := strings.ToLower(strings.TrimSpace(targetSkill))
	if skill == "" {
		return nil, fmt.Errorf("skill is required")
	}

	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byDifficulty := make(map[string][]*models.Course)
	for i := range courses {
		course := &courses[i]
		if matchesQuery(*course, skill) {
			byDifficulty[course.Difficulty] = append(byDifficulty[course.Difficulty], course)
		}
	}

	stages := []struct {
		difficulty  string
		limit       int
		description string
	}{
		{models.DifficultyBeginner, 2, "Foundation course"},
		{models.DifficultyIntermediate, 2, "Build intermediate skills"},
		{models.DifficultyAdvanced, 1, "Master advanced concepts"},
	}

	path := []models.LearningPathStep{}
	for _, stage := range stages {
		candidates := byDifficulty[stage.difficulty]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Rating > candidates[j].Rating
		})
		for i := 0; i < len(candidates) && i < stage.limit; i++ {
			path = append(path, models.LearningPathStep{
				Step:        len(path) + 1,
				Course:      candidates[i],
				Description: stage.description,
			})
		}
	}

	return path, nil
}

// GetAdaptiveSuggestions tunes pace and difficulty to the user's recent completions
func (s *recommendationService) GetAdaptiveSuggestions(ctx context.Context, userID, courseID string) (*models.AdaptiveSuggestions, error) {
	recent, err := s.completions.CountCompletionsSince(ctx, userID, s.now().Add(-adaptiveWindow))
	if err != nil {
		return nil, err
	}

	suggestions := &models.AdaptiveSuggestions{
		DifficultyAdjustment:   "maintain",
		RecommendedPace:        "steady",
		SupplementaryMaterials: append([]string(nil), supplementaryMaterials...),
		ReviewTopics:           []string{},
		RecentCompletions:      recent,
	}

	switch {
	case recent < slowCompletionsPerWeek:
		suggestions.DifficultyAdjustment = "reduce"
		suggestions.RecommendedPace = "slower"
	case recent > fastCompletionsPerWeek:
		suggestions.DifficultyAdjustment = "increase"
		suggestions.RecommendedPace = "faster"
	}

	if courseID == "" {
		return suggestions, nil
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	lessons, err := s.courseRepo.GetLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completions.GetCompletionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		if c.CourseID == courseID {
			done[c.LessonID] = struct{}{}
		}
	}

	for _, lesson := range lessons {
		if _, ok := done[lesson.ID]; !ok {
			suggestions.ReviewTopics = append(suggestions.ReviewTopics, lesson.Title)
		}
	}

	return suggestions, nil
}

// AnalyzeLearningEffectiveness classifies completion velocity and preferred content
func (s *recommendationService) AnalyzeLearningEffectiveness(ctx context.Context, userID string) (*models.LearningEffectiveness, error) {
	enrollments, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.interactionRepo.CountByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, e := range enrollments {
		if e.CompletedAt != nil {
			completed++
		}
	}

	analysis := &models.LearningEffectiveness{
		LearningVelocity:      "average",
		RetentionScore:        defaultRetentionScore,
		PreferredContentTypes: []string{},
	}

	if completed > 0 {
		enrolled := float64(len(enrollments))
		switch {
		case enrolled > 0 && float64(completed) >= enrolled*0.7:
			analysis.LearningVelocity = "fast"
		case float64(completed) < enrolled*0.3:
			analysis.LearningVelocity = "slow"
		}
	}

	for i := 0; i < len(counts) && i < preferredContentTypes; i++ {
		analysis.PreferredContentTypes = append(analysis.PreferredContentTypes, counts[i].Category)
	}

	return analysis, nil
}
