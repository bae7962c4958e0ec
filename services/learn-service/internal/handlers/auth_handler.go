package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/edulearn/platform/libs/validation"
	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the registration data, creates the user with its stats row and returns tokens.
	//
	// "req" parameter contains username, email, password with its confirmation and optional preferences.
	//
	// If the data is invalid, or such user already exists, or some other error occurs, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	// Method Login checks the credentials and returns the user with fresh tokens.
	//
	// "req" parameter contains username and password.
	//
	// If credentials are wrong or the account is inactive, the "invalid credentials" error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method Refresh validates and rotates a refresh token.
	//
	// "refreshToken" parameter is the token to rotate.
	//
	// If the token is unknown or expired, the "invalid refresh token" error will be returned together with "nil" value.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	// Method Logout forgets a refresh token.
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService   AuthService
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	logger *zap.Logger,
	accessExpiry, refreshExpiry time.Duration,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		authService:   authService,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new learner. Returns the user and sets access and refresh tokens as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 409 {object} map[string]string "Username already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		h.RespondServiceError(w, err, "failed to register user")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to register user")
		return
	}

	h.setTokenCookies(w, resp.AccessToken, resp.RefreshToken)
	h.RespondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with username and password. Returns the user and sets access and refresh tokens as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to login user")
		return
	}

	h.setTokenCookies(w, resp.AccessToken, resp.RefreshToken)
	h.RespondJSON(w, http.StatusOK, resp)
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Rotate the refresh token. The token can be provided in the request body or as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := readRefreshToken(r)
	if refreshToken == "" {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	resp, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.Logger.Info("refresh rejected", zap.Error(err))
		h.RespondServiceError(w, err, "failed to refresh tokens")
		return
	}

	h.setTokenCookies(w, resp.AccessToken, resp.RefreshToken)
	h.RespondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Forget the refresh token and clear the auth cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Logged out"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), readRefreshToken(r)); err != nil {
		h.RespondServiceError(w, err, "failed to logout")
		return
	}

	h.clearTokenCookies(w)
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// readRefreshToken takes the token from the JSON body, falling back to the cookie
func readRefreshToken(r *http.Request) string {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.cookie(accessTokenCookie, accessToken, int(h.accessExpiry.Seconds())))
	http.SetCookie(w, h.cookie(refreshTokenCookie, refreshToken, int(h.refreshExpiry.Seconds())))
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(accessTokenCookie, "", -1))
	http.SetCookie(w, h.cookie(refreshTokenCookie, "", -1))
}

func (h *AuthHandler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
