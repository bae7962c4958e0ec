package services

import (
	"context"
	"sort"
	"strings"

	"github.com/edulearn/platform/libs/metrics"
	"github.com/edulearn/platform/services/learn-service/internal/catalog"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRecommendedCourses = 10

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// Count returns the number of courses
	//
	// "ctx" is the context for the request.
	//
	// Returns the count and an error if any.
	Count(ctx context.Context) (int, error)
	// CreateWithLessons inserts a course and its lessons atomically
	//
	// "ctx" is the context for the request.
	// "course" is the course to insert, lessons included.
	//
	// Returns an error if any.
	CreateWithLessons(ctx context.Context, course *models.Course) error
	// GetByID retrieves a course without lessons
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the course or the "course not found" error.
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	// GetAll retrieves every course ordered by title
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of courses and an error if any.
	GetAll(ctx context.Context) ([]models.Course, error)
	// GetCategories returns the distinct categories in ascending order
	//
	// "ctx" is the context for the request.
	//
	// Returns a list of categories and an error if any.
	GetCategories(ctx context.Context) ([]string, error)
	// GetLessons retrieves the lessons of a course ordered by position
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lessons and an error if any.
	GetLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
	// CountEnrollments returns how many users are enrolled in a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the count and an error if any.
	CountEnrollments(ctx context.Context, courseID string) (int, error)
}

// EnrollmentRecorder applies the progress side effects of an enrollment
type EnrollmentRecorder interface {
	RecordEnrollment(ctx context.Context, userID string) ([]string, error)
}

// courseService implements CourseService
type courseService struct {
	courseRepo     CourseRepository
	enrollmentRepo EnrollmentRepository
	progress       EnrollmentRecorder
	interactions   InteractionRecorder
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(
	courseRepo CourseRepository,
	enrollmentRepo EnrollmentRepository,
	progress EnrollmentRecorder,
	interactions InteractionRecorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *courseService {
	return &courseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progress:       progress,
		interactions:   interactions,
		metrics:        m,
		logger:         logger,
	}
}

// SeedCatalog inserts the embedded sample catalog when the courses table is empty.
// It returns the number of courses inserted.
func (s *courseService) SeedCatalog(ctx context.Context) (int, error) {
	count, err := s.courseRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seeds, err := catalog.Courses()
	if err != nil {
		return 0, err
	}

	for _, seed := range seeds {
		course := courseFromSeed(seed)
		if err := s.courseRepo.CreateWithLessons(ctx, course); err != nil {
			return 0, err
		}
	}

	s.logger.Info("course catalog seeded", zap.Int("courses", len(seeds)))
	return len(seeds), nil
}

func courseFromSeed(seed catalog.CourseSeed) *models.Course {
	course := &models.Course{
		ID:               uuid.NewString(),
		Title:            seed.Title,
		Description:      seed.Description,
		Category:         seed.Category,
		Difficulty:       seed.Difficulty,
		EstimatedHours:   seed.EstimatedHours,
		Rating:           seed.Rating,
		Instructor:       seed.Instructor,
		Tags:             models.StringList(seed.Tags),
		Prerequisites:    models.StringList(seed.Prerequisites),
		LearningOutcomes: models.StringList(seed.LearningOutcomes),
		Lessons:          make([]models.Lesson, 0, len(seed.Lessons)),
	}
	for i, l := range seed.Lessons {
		course.Lessons = append(course.Lessons, models.Lesson{
			ID:              uuid.NewString(),
			CourseID:        course.ID,
			Position:        i + 1,
			Title:           l.Title,
			DurationMinutes: l.DurationMinutes,
			Content:         l.Content,
		})
	}
	return course
}

// GetCourse returns a course with its lessons
func (s *courseService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.courseRepo.GetLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons

	return course, nil
}

// GetAllCourses returns the whole catalog
func (s *courseService) GetAllCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// GetCategories returns the sorted unique categories
func (s *courseService) GetCategories(ctx context.Context) ([]string, error) {
	return s.courseRepo.GetCategories(ctx)
}

// SearchCourses filters the catalog and sorts the matches by rating
func (s *courseService) SearchCourses(ctx context.Context, search models.CourseSearch) ([]models.Course, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(search.Query))
	results := []models.Course{}
	for _, course := range courses {
		if isFilterSet(search.Category) && course.Category != search.Category {
			continue
		}
		if isFilterSet(search.Difficulty) && course.Difficulty != search.Difficulty {
			continue
		}
		if query != "" && !matchesQuery(course, query) {
			continue
		}
		results = append(results, course)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rating > results[j].Rating
	})
	return results, nil
}

func isFilterSet(value string) bool {
	return value != "" && value != models.FilterAll
}

// matchesQuery reports whether the lowercased query occurs in the title, description or a tag
func matchesQuery(course models.Course, query string) bool {
	if strings.Contains(strings.ToLower(course.Title), query) ||
		strings.Contains(strings.ToLower(course.Description), query) {
		return true
	}
	for _, tag := range course.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// GetCourseLessons returns the lessons of an existing course
func (s *courseService) GetCourseLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.courseRepo.GetLessons(ctx, courseID)
}

// Enroll enrolls a user in a course and returns the achievements the enrollment earned
func (s *courseService) Enroll(ctx context.Context, userID, courseID string) ([]string, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.enrollmentRepo.Create(ctx, userID, courseID); err != nil {
		return nil, err
	}
	s.metrics.Enrollments.WithLabelValues(course.Category).Inc()

	awarded, err := s.progress.RecordEnrollment(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to record enrollment progress", zap.Error(err), zap.String("userId", userID))
		awarded = nil
	}
	if awarded == nil {
		awarded = []string{}
	}

	if err := s.interactions.RecordInteraction(ctx, userID, models.InteractionEnroll, courseID, course.Category); err != nil {
		s.logger.Warn("failed to record enroll interaction", zap.Error(err), zap.String("userId", userID))
	}

	return awarded, nil
}

// ViewCourse records that a user opened a course
func (s *courseService) ViewCourse(ctx context.Context, userID, courseID string) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	return s.interactions.RecordInteraction(ctx, userID, models.InteractionView, courseID, course.Category)
}

// GetUserEnrollments returns the enrolled course ids and enrollment records of a user
func (s *courseService) GetUserEnrollments(ctx context.Context, userID string) (*models.UserEnrollments, error) {
	enrollments, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	return &models.UserEnrollments{CourseIDs: ids, Enrollments: enrollments}, nil
}

// IsUserEnrolled checks an enrollment
func (s *courseService) IsUserEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return s.enrollmentRepo.Exists(ctx, userID, courseID)
}

// GetCourseStats summarizes a course
func (s *courseService) GetCourseStats(ctx context.Context, courseID string) (*models.CourseStats, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.courseRepo.GetLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.courseRepo.CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &models.CourseStats{
		CourseID:        courseID,
		EnrollmentCount: enrolled,
		Rating:          course.Rating,
		TotalLessons:    len(lessons),
		EstimatedHours:  course.EstimatedHours,
		Category:        course.Category,
	}, nil
}

// GetRecommendedCourses scores the catalog against interests and a difficulty preference
func (s *courseService) GetRecommendedCourses(ctx context.Context, interests []string, difficulty string, exclude []string) ([]models.ScoredCourse, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	scored := []models.ScoredCourse{}
	for i := range courses {
		course := &courses[i]
		if _, skip := excluded[course.ID]; skip {
			continue
		}
		if score := catalogMatchScore(course, interests, difficulty); score > 0 {
			scored = append(scored, models.ScoredCourse{Course: course, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxRecommendedCourses {
		scored = scored[:maxRecommendedCourses]
	}
	return scored, nil
}

// catalogMatchScore is the simple interest and difficulty score used for catalog suggestions
func catalogMatchScore(course *models.Course, interests []string, difficulty string) float64 {
	score := 0.0
	category := strings.ToLower(course.Category)

	for _, interest := range interests {
		interest = strings.ToLower(interest)
		if interest == "" {
			continue
		}
		for _, tag := range course.Tags {
			if strings.Contains(strings.ToLower(tag), interest) {
				score += 2
				break
			}
		}
		if strings.Contains(category, interest) {
			score += 3
		}
	}

	if course.Difficulty == difficulty {
		score++
	} else if difficulty == models.DifficultyMixed {
		score += 0.5
	}

	return score + course.Rating*0.5
}
