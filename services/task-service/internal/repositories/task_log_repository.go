package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"go.uber.org/zap"
)

type taskLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskLogRepository creates a new task log repository
func NewTaskLogRepository(db *sql.DB, logger *zap.Logger) *taskLogRepository {
	return &taskLogRepository{db: db, logger: logger}
}

// Create inserts a new task log
func (r *taskLogRepository) Create(ctx context.Context, log *models.TaskLog) error {
	query := `
		INSERT INTO task_logs (task_type, job_id, status, error)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, log.TaskType, log.JobID, log.Status, log.Error)
	if err != nil {
		r.logger.Error("failed to create task log", zap.Error(err))
		return fmt.Errorf("failed to create task log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	log.ID = int(id)
	return nil
}

// GetByID retrieves a task log by ID
func (r *taskLogRepository) GetByID(ctx context.Context, id int) (*models.TaskLog, error) {
	query := `
		SELECT id, task_type, job_id, status, error, created_at
		FROM task_logs
		WHERE id = ?
		LIMIT 1
	`

	logEntry := &models.TaskLog{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&logEntry.ID,
		&logEntry.TaskType,
		&logEntry.JobID,
		&logEntry.Status,
		&logEntry.Error,
		&logEntry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task log not found")
	}
	if err != nil {
		r.logger.Error("failed to get task log by ID", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get task log by ID: %w", err)
	}

	return logEntry, nil
}

// GetAll retrieves a paginated list of task logs, newest first, with optional filters
func (r *taskLogRepository) GetAll(ctx context.Context, page, count int, taskType, status string) ([]models.TaskLogListItem, error) {
	var whereConditions []string
	var args []any

	if taskType != "" {
		whereConditions = append(whereConditions, "task_type = ?")
		args = append(args, taskType)
	}

	if status != "" {
		whereConditions = append(whereConditions, "status = ?")
		args = append(args, status)
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	offset := (page - 1) * count

	query := fmt.Sprintf(`
		SELECT id, task_type, job_id, status, created_at
		FROM task_logs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	args = append(args, count, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query task logs", zap.Error(err))
		return nil, fmt.Errorf("failed to query task logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.TaskLogListItem, 0)
	for rows.Next() {
		var logEntry models.TaskLogListItem
		if err := rows.Scan(&logEntry.ID, &logEntry.TaskType, &logEntry.JobID, &logEntry.Status, &logEntry.CreatedAt); err != nil {
			r.logger.Error("failed to scan task log", zap.Error(err))
			return nil, fmt.Errorf("failed to scan task log: %w", err)
		}
		logs = append(logs, logEntry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}
