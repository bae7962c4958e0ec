package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
)

// enrollmentRepository implements EnrollmentRepository
type enrollmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB, logger *zap.Logger) *enrollmentRepository {
	return &enrollmentRepository{
		db:     db,
		logger: logger,
	}
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	var completedAt sql.NullTime
	if err := row.Scan(&e.UserID, &e.CourseID, &e.EnrolledAt, &e.ProgressPercentage, &completedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return e, nil
}

// Create enrolls a user. A second enrollment in the same course is rejected.
func (r *enrollmentRepository) Create(ctx context.Context, userID, courseID string) error {
	query := `INSERT INTO enrollments (user_id, course_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("already enrolled")
		}
		r.logger.Error("failed to create enrollment", zap.Error(err), zap.String("userId", userID), zap.String("courseId", courseID))
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

// Exists checks whether a user is enrolled in a course
func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = ? AND course_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		r.logger.Error("failed to check enrollment", zap.Error(err))
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// Get retrieves one enrollment
func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	query := `
		SELECT user_id, course_id, enrolled_at, progress_percentage, completed_at
		FROM enrollments
		WHERE user_id = ? AND course_id = ?
	`

	e, err := scanEnrollment(r.db.QueryRowContext(ctx, query, userID, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enrollment not found")
	}
	if err != nil {
		r.logger.Error("failed to get enrollment", zap.Error(err))
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

// GetByUser retrieves a user's enrollments in enrollment order
func (r *enrollmentRepository) GetByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	query := `
		SELECT user_id, course_id, enrolled_at, progress_percentage, completed_at
		FROM enrollments
		WHERE user_id = ?
		ORDER BY enrolled_at ASC, course_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query enrollments", zap.Error(err), zap.String("userId", userID))
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			r.logger.Error("failed to scan enrollment", zap.Error(err))
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress stores the progress percentage and, once, the completion time
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, percentage float64, completedAt *time.Time) error {
	query := `
		UPDATE enrollments
		SET progress_percentage = ?, completed_at = COALESCE(completed_at, ?)
		WHERE user_id = ? AND course_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, percentage, completedAt, userID, courseID)
	if err != nil {
		r.logger.Error("failed to update enrollment progress", zap.Error(err))
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("enrollment not found")
	}
	return nil
}

// CountCompletedSince counts courses the user completed at or after since
func (r *enrollmentRepository) CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND completed_at IS NOT NULL AND completed_at >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		r.logger.Error("failed to count completed courses", zap.Error(err))
		return 0, fmt.Errorf("failed to count completed courses: %w", err)
	}
	return count, nil
}
