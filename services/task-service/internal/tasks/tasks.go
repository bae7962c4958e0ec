// Package tasks defines the asynq task types shared by the worker, scheduler and admin API
package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeAchievementEmail = "email:achievement"
	TypeDailyReminder    = "email:daily_reminder"
	TypeDailyReset       = "progress:daily_reset"
	TypeTokenCleanup     = "auth:token_cleanup"
)

// Queues and their worker priorities
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues maps queue names to asynq priorities
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
}

// AchievementPayload carries an awarded achievement to the e-mail handler
type AchievementPayload struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// NewAchievementEmailTask builds an email:achievement task
func NewAchievementEmailTask(p AchievementPayload) (*asynq.Task, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal achievement payload: %w", err)
	}
	return asynq.NewTask(TypeAchievementEmail, data, asynq.Queue(QueueCritical), asynq.MaxRetry(5)), nil
}

// ParseAchievementPayload decodes an email:achievement payload
func ParseAchievementPayload(t *asynq.Task) (AchievementPayload, error) {
	var p AchievementPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid achievement payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.UserID == "" || p.Title == "" {
		return p, fmt.Errorf("invalid achievement payload: user_id and title are required: %w", asynq.SkipRetry)
	}
	return p, nil
}

// Maintenance lists the task types that take no payload and may be triggered on demand
var Maintenance = []string{TypeDailyReminder, TypeDailyReset, TypeTokenCleanup}

// IsMaintenance reports whether taskType is a payload-free maintenance task
func IsMaintenance(taskType string) bool {
	for _, t := range Maintenance {
		if t == taskType {
			return true
		}
	}
	return false
}

// NewMaintenanceTask builds one of the payload-free tasks
func NewMaintenanceTask(taskType string) (*asynq.Task, error) {
	if !IsMaintenance(taskType) {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}
	return asynq.NewTask(taskType, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
