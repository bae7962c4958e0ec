package models

import "time"

// TaskLogStatus represents the outcome of a processed task
type TaskLogStatus string

const (
	TaskLogStatusCompleted TaskLogStatus = "Completed"
	TaskLogStatusFailed    TaskLogStatus = "Failed"
)

// TaskLog represents a task log entry
type TaskLog struct {
	ID        int           `json:"id"`
	TaskType  string        `json:"task_type"`
	JobID     string        `json:"job_id"`
	Status    TaskLogStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// TaskLogListItem represents a task log in a list response
type TaskLogListItem struct {
	ID        int           `json:"id"`
	TaskType  string        `json:"task_type"`
	JobID     string        `json:"job_id"`
	Status    TaskLogStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
