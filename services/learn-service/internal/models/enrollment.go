package models

import "time"

// Enrollment links a user to a course and tracks completion
type Enrollment struct {
	UserID             string     `json:"userId"`
	CourseID           string     `json:"courseId"`
	EnrolledAt         time.Time  `json:"enrolledAt"`
	ProgressPercentage float64    `json:"progressPercentage"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// LessonCompletion records a completed lesson
type LessonCompletion struct {
	UserID           string    `json:"userId"`
	CourseID         string    `json:"courseId"`
	LessonID         string    `json:"lessonId"`
	CompletedAt      time.Time `json:"completedAt"`
	TimeSpentMinutes int       `json:"timeSpentMinutes"`
}

// UserEnrollments lists a user's enrollments
type UserEnrollments struct {
	CourseIDs   []string     `json:"courseIds"`
	Enrollments []Enrollment `json:"enrollments"`
}

// Interaction types
const (
	InteractionView     = "view"
	InteractionEnroll   = "enroll"
	InteractionComplete = "complete"
)

// Interaction records a user action on a course
type Interaction struct {
	UserID    string            `json:"userId"`
	Type      string            `json:"interactionType"`
	CourseID  string            `json:"courseId"`
	Category  string            `json:"category"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
