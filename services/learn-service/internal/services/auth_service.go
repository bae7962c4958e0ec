package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/edulearn/platform/libs/auth/service"
	"github.com/edulearn/platform/libs/events"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	dailyGoalStep     = 15
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If the username is taken, the "username already exists" error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the "user not found" error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// Method GetByUsername retrieves a user by username.
	//
	// "username" parameter is used to retrieve a user by username.
	//
	// If user with such username does not exist, the "user not found" error will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// "username" parameter is used to check if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method GetAll retrieves every user ordered by registration time.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method UpdateLastLogin stores the time of the latest login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	// Method UpdatePreferences replaces the preferences of a user.
	UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) error
	// Method UpdateAccount changes the email and the password hash of a user.
	UpdateAccount(ctx context.Context, userID, email, passwordHash string) error
	// Method Deactivate marks a user inactive.
	Deactivate(ctx context.Context, userID string) error
}

// UserTokenRepository is the interface that wraps methods for user_tokens table data access
type UserTokenRepository interface {
	// Method Create inserts a new user token into the database.
	//
	// "userToken" parameter is used to create a new user token.
	//
	// If some error occurs during user token creation, the error will be returned.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a user token by token string.
	//
	// "token" parameter is used to retrieve a user token by token string.
	//
	// If user token with such token does not exist, the error will be returned together with "nil" value.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces a stored token owned by userID.
	//
	// "oldToken" parameter is the token to replace.
	// "newToken" parameter is the replacement.
	// "userID" parameter must match the owner of oldToken.
	//
	// If some error occurs during user token update, the error will be returned.
	UpdateToken(ctx context.Context, oldToken, newToken, userID string) error
	// Method DeleteByToken deletes a user token by token string.
	//
	// Deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// Method DeleteByUserID deletes every token of a user.
	DeleteByUserID(ctx context.Context, userID string) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	statsRepo      UserStatsRepository
	tokenGenerator *service.TokenGenerator
	publisher      events.Publisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	statsRepo UserStatsRepository,
	tokenGenerator *service.TokenGenerator,
	publisher events.Publisher,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		statsRepo:      statsRepo,
		tokenGenerator: tokenGenerator,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new user account together with its stats row
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email, username, err := s.checkRegisterCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleLearner,
		Preferences:  req.Preferences,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.statsRepo.Create(ctx, user.ID, user.Preferences.DailyGoal()); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TypeUserRegistered, events.UserRegistered{
		UserID:   user.ID,
		Username: user.Username,
	}); err != nil {
		s.logger.Warn("failed to publish registration event", zap.Error(err), zap.String("userId", user.ID))
	}

	s.logger.Info("user registered", zap.String("userId", user.ID), zap.String("username", user.Username))
	return &models.AuthResponse{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login authenticates a user. Unknown users, wrong passwords and inactive accounts look the same.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("invalid credentials")
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	accessToken, refreshToken, err := generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token
//
// The stored token lookup and the signature check do not depend on each other,
// so both run in parallel.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	errorChan := make(chan error, 2)
	userTokenChan := make(chan *models.UserToken, 1)

	go func() {
		userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				err = fmt.Errorf("invalid refresh token")
			}
			userTokenChan <- nil
			errorChan <- err
			return
		}
		userTokenChan <- userToken
		errorChan <- nil
	}()

	go func() {
		if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
			// an expired token is useless, drop it if it is still stored
			if delErr := s.userTokenRepo.DeleteByToken(ctx, refreshToken); delErr != nil {
				s.logger.Warn("failed to delete invalid refresh token", zap.Error(delErr))
			}
			errorChan <- fmt.Errorf("invalid refresh token")
			return
		}
		errorChan <- nil
	}()

	for range 2 {
		if err := <-errorChan; err != nil {
			return nil, err
		}
	}
	userToken := <-userTokenChan

	user, err := s.userRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is inactive")
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		return nil, err
	}

	return &models.AuthResponse{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout forgets a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.userTokenRepo.DeleteByToken(ctx, refreshToken)
}

// Method that generates and saves access and refresh tokens
func generateAndSaveTokens(ctx context.Context, tokenGenerator *service.TokenGenerator,
	userTokenRepo UserTokenRepository, userID string, role models.Role) (string, string, error) {
	accessToken, refreshToken, err := tokenGenerator.GenerateTokens(userID, int(role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Method that combines all checks for register credentials
//
// The checks do not depend on each other, so they run in parallel.
// Returns the normalized email and username.
func (s *authService) checkRegisterCredentials(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	validationErrors := make(chan error, 3)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	username := strings.TrimSpace(req.Username)

	go func() {
		if len(req.Password) < minPasswordLength {
			validationErrors <- fmt.Errorf("password must be at least %d characters long", minPasswordLength)
			return
		}
		if req.Password != req.ConfirmPassword {
			validationErrors <- fmt.Errorf("passwords do not match")
			return
		}
		validationErrors <- validatePreferences(req.Preferences)
	}()

	go func() {
		if email == "" {
			validationErrors <- fmt.Errorf("email is required")
			return
		}
		if !emailRegex.MatchString(email) {
			validationErrors <- fmt.Errorf("invalid email format")
			return
		}
		validationErrors <- nil
	}()

	go func() {
		if username == "" {
			validationErrors <- fmt.Errorf("username is required")
			return
		}
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			validationErrors <- fmt.Errorf("failed to check username: %w", err)
			return
		}
		if exists {
			validationErrors <- fmt.Errorf("username already exists")
			return
		}
		validationErrors <- nil
	}()

	var firstErr error
	for range 3 {
		if err := <-validationErrors; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", "", firstErr
	}

	return email, username, nil
}

// validatePreferences applies the preference tags plus the 15 minute goal step
func validatePreferences(prefs models.Preferences) error {
	if err := validation.Struct(prefs); err != nil {
		return err
	}
	if prefs.DailyGoalMinutes%dailyGoalStep != 0 {
		return fmt.Errorf("daily goal must be a multiple of %d minutes", dailyGoalStep)
	}
	return nil
}
