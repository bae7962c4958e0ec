// Package events carries domain events between EduLearn services over NATS
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubjectPrefix is prepended to every event type to form the NATS subject
const SubjectPrefix = "edulearn.events."

// Event types
const (
	TypeAchievementAwarded = "achievement.awarded"
	TypeCourseCompleted    = "course.completed"
	TypeUserRegistered     = "user.registered"
)

// Event is the JSON envelope published on the bus
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// AchievementAwarded is published when a user earns an achievement
type AchievementAwarded struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Points        int    `json:"points"`
}

// CourseCompleted is published when a user reaches 100% on a course
type CourseCompleted struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
}

// UserRegistered is published after a successful registration
type UserRegistered struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Subject returns the NATS subject for an event type
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// NewEvent wraps payload into an envelope
func NewEvent(source, eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// Decode unmarshals the event payload
func Decode[T any](e *Event) (T, error) {
	var payload T
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return payload, nil
}

// NoopPublisher drops every event. Used when NATS_URL is empty.
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
