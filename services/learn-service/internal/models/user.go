package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role is the authorization level of a user
type Role int

// UserRole constants
const (
	RoleLearner Role = 1
	RoleAdmin   Role = 2
)

// String returns the role name
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "learner"
}

// MarshalJSON renders the role by name
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// DefaultDailyGoalMinutes is used when preferences do not set a goal
const DefaultDailyGoalMinutes = 30

// Preferences holds a user's learning preferences
type Preferences struct {
	LearningStyle        string   `json:"learningStyle" validate:"omitempty,oneof=Visual Auditory Kinesthetic Reading/Writing"`
	DifficultyPreference string   `json:"difficultyPreference" validate:"omitempty,oneof=Beginner Intermediate Advanced Mixed"`
	StudyTime            string   `json:"studyTime" validate:"omitempty,oneof='15-30 minutes' '30-60 minutes' '1-2 hours' '2+ hours'"`
	Interests            []string `json:"interests" validate:"dive,oneof=Technology Science Mathematics Languages Business Arts History"`
	DailyGoalMinutes     int      `json:"dailyGoalMinutes" validate:"omitempty,min=15,max=180"`
}

// DailyGoal returns the configured goal or the default
func (p Preferences) DailyGoal() int {
	if p.DailyGoalMinutes <= 0 {
		return DefaultDailyGoalMinutes
	}
	return p.DailyGoalMinutes
}

// Value implements driver.Valuer
func (p Preferences) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (p *Preferences) Scan(src any) error {
	return scanJSON(src, p)
}

// User represents a user in the system
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never serialize password hash
	Role         Role        `json:"role"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	IsActive     bool        `json:"isActive"`
}

// UserContact is the minimal user view shared with the worker
type UserContact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username        string      `json:"username" validate:"required,min=3,max=50"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required"`
	Preferences     Preferences `json:"preferences"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest changes email and optionally password
type UpdateAccountRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

// AuthResponse is returned after register, login and refresh
type AuthResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UsersStats aggregates the user base for administrators
type UsersStats struct {
	TotalUsers     int            `json:"totalUsers"`
	ActiveUsers    int            `json:"activeUsers"`
	LearningStyles map[string]int `json:"learningStyles"`
	Registrations  map[string]int `json:"registrationsByDate"`
}
