package models

import "time"

// UserToken represents a stored refresh token
type UserToken struct {
	ID        int
	UserID    string
	Token     string
	CreatedAt time.Time
}
