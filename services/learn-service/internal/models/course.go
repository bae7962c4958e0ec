package models

import "time"

// Difficulty levels
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
	DifficultyMixed        = "Mixed"
)

// FilterAll disables a search filter
const FilterAll = "All"

// Course represents a course in the catalog
type Course struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Difficulty       string     `json:"difficulty"`
	EstimatedHours   int        `json:"estimatedHours"`
	Rating           float64    `json:"rating"`
	Instructor       string     `json:"instructor"`
	Tags             StringList `json:"tags"`
	Prerequisites    StringList `json:"prerequisites"`
	LearningOutcomes StringList `json:"learningOutcomes"`
	Lessons          []Lesson   `json:"lessons,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Lesson represents a lesson of a course
type Lesson struct {
	ID              string `json:"id"`
	CourseID        string `json:"courseId"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	Content         string `json:"content"`
}

// CourseSearch filters the catalog. Empty or "All" disables a filter.
type CourseSearch struct {
	Query      string
	Category   string
	Difficulty string
}

// CourseStats summarizes a course
type CourseStats struct {
	CourseID        string  `json:"courseId"`
	EnrollmentCount int     `json:"enrollmentCount"`
	Rating          float64 `json:"rating"`
	TotalLessons    int     `json:"totalLessons"`
	EstimatedHours  int     `json:"estimatedHours"`
	Category        string  `json:"category"`
}

// ScoredCourse is a course with a match score
type ScoredCourse struct {
	Course *Course `json:"course"`
	Score  float64 `json:"score"`
}
