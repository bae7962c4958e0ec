package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

const courseColumns = `id, title, description, category, difficulty, estimated_hours, rating, instructor,
	tags, prerequisites, learning_outcomes, created_at`

// courseRepository implements CourseRepository
type courseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB, logger *zap.Logger) *courseRepository {
	return &courseRepository{
		db:     db,
		logger: logger,
	}
}

func scanCourse(row rowScanner) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.Difficulty,
		&course.EstimatedHours,
		&course.Rating,
		&course.Instructor,
		&course.Tags,
		&course.Prerequisites,
		&course.LearningOutcomes,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// Count returns the number of courses
func (r *courseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		r.logger.Error("failed to count courses", zap.Error(err))
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

// CreateWithLessons inserts a course and its lessons in one transaction
func (r *courseRepository) CreateWithLessons(ctx context.Context, course *models.Course) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	courseQuery := `
		INSERT INTO courses (id, title, description, category, difficulty, estimated_hours, rating, instructor,
			tags, prerequisites, learning_outcomes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, courseQuery,
		course.ID, course.Title, course.Description, course.Category, course.Difficulty,
		course.EstimatedHours, course.Rating, course.Instructor,
		course.Tags, course.Prerequisites, course.LearningOutcomes,
	)
	if err != nil {
		r.logger.Error("failed to create course", zap.Error(err), zap.String("title", course.Title))
		return fmt.Errorf("failed to create course: %w", err)
	}

	lessonQuery := `
		INSERT INTO lessons (id, course_id, position, title, duration_minutes, content)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, lesson := range course.Lessons {
		_, err = tx.ExecContext(ctx, lessonQuery,
			lesson.ID, course.ID, lesson.Position, lesson.Title, lesson.DurationMinutes, lesson.Content)
		if err != nil {
			r.logger.Error("failed to create lesson", zap.Error(err), zap.String("title", lesson.Title))
			return fmt.Errorf("failed to create lesson: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a course without its lessons
func (r *courseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		r.logger.Error("failed to get course", zap.Error(err), zap.String("courseId", courseID))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// GetAll retrieves every course ordered by title
func (r *courseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY title ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query courses", zap.Error(err))
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			r.logger.Error("failed to scan course", zap.Error(err))
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// GetCategories returns the distinct categories in ascending order
func (r *courseRepository) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM courses ORDER BY category ASC`)
	if err != nil {
		r.logger.Error("failed to query categories", zap.Error(err))
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetLessons retrieves the lessons of a course ordered by position
func (r *courseRepository) GetLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, position, title, duration_minutes, content
		FROM lessons
		WHERE course_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		r.logger.Error("failed to query lessons", zap.Error(err), zap.String("courseId", courseID))
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Position,
			&lesson.Title,
			&lesson.DurationMinutes,
			&lesson.Content,
		); err != nil {
			r.logger.Error("failed to scan lesson", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}
	return lessons, nil
}

// CountEnrollments returns how many users are enrolled in a course
func (r *courseRepository) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = ?`, courseID).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count enrollments", zap.Error(err), zap.String("courseId", courseID))
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}
