package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RecommendationInvalidator drops cached recommendations of a user
type RecommendationInvalidator interface {
	InvalidateRecommendations(ctx context.Context, userID string)
}

// profileService implements ProfileService
type profileService struct {
	userRepo      UserRepository
	userTokenRepo UserTokenRepository
	statsRepo     UserStatsRepository
	invalidator   RecommendationInvalidator
	logger        *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	statsRepo UserStatsRepository,
	invalidator RecommendationInvalidator,
	logger *zap.Logger,
) *profileService {
	return &profileService{
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		statsRepo:     statsRepo,
		invalidator:   invalidator,
		logger:        logger,
	}
}

// GetProfile returns the user
func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePreferences stores new preferences and keeps the stats goal in sync
func (s *profileService) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error) {
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}

	if err := s.statsRepo.UpdateDailyGoal(ctx, userID, prefs.DailyGoal()); err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, err
		}
		if err := s.statsRepo.Create(ctx, userID, prefs.DailyGoal()); err != nil {
			return nil, err
		}
	}

	s.invalidator.InvalidateRecommendations(ctx, userID)
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateAccount changes the email and optionally the password after checking the current password
func (s *profileService) UpdateAccount(ctx context.Context, userID string, req *models.UpdateAccountRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return nil, fmt.Errorf("current password is invalid")
	}

	passwordHash := user.PasswordHash
	if req.NewPassword != "" {
		if len(req.NewPassword) < minPasswordLength {
			return nil, fmt.Errorf("password must be at least %d characters long", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	if err := s.userRepo.UpdateAccount(ctx, userID, email, passwordHash); err != nil {
		return nil, err
	}

	user.Email = email
	user.PasswordHash = passwordHash
	return user, nil
}

// Deactivate disables the account and signs it out everywhere
func (s *profileService) Deactivate(ctx context.Context, userID string) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}
	if err := s.userTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deactivated", zap.String("userId", userID))
	return nil
}
