package services

import (
	"context"
	"time"

	"github.com/edulearn/platform/services/learn-service/internal/models"
)

// adminService implements AdminService
type adminService struct {
	userRepo UserRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo UserRepository) *adminService {
	return &adminService{userRepo: userRepo}
}

// GetUsersStats aggregates the user base
func (s *adminService) GetUsersStats(ctx context.Context) (*models.UsersStats, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.UsersStats{
		TotalUsers:     len(users),
		LearningStyles: map[string]int{},
		Registrations:  map[string]int{},
	}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		}
		if style := u.Preferences.LearningStyle; style != "" {
			stats.LearningStyles[style]++
		}
		stats.Registrations[u.CreatedAt.Format(time.DateOnly)]++
	}

	return stats, nil
}

// GetUserContact returns what the worker needs to email a user
func (s *adminService) GetUserContact(ctx context.Context, userID string) (*models.UserContact, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserContact{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	}, nil
}
