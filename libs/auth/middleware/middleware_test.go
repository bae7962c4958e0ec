package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edulearn/platform/libs/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		role, ok := GetRole(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", userID)
		w.Header().Set("X-Role", map[int]string{service.RoleLearner: "learner", service.RoleAdmin: "admin"}[role])
		w.WriteHeader(http.StatusOK)
	})
}

func TestRoleMiddleware(t *testing.T) {
	tg := service.NewTokenGenerator("secret", time.Hour, time.Hour)
	learnerToken, _, err := tg.GenerateTokens("learner-1", service.RoleLearner)
	require.NoError(t, err)
	adminToken, _, err := tg.GenerateTokens("admin-1", service.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name           string
		requiredRole   int
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "missing token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bearer header",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+learnerToken) },
			expectedStatus: http.StatusOK,
			expectedUser:   "learner-1",
		},
		{
			name: "cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: learnerToken})
			},
			expectedStatus: http.StatusOK,
			expectedUser:   "learner-1",
		},
		{
			name:           "insufficient role",
			requiredRole:   service.RoleAdmin,
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+learnerToken) },
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin role",
			requiredRole:   service.RoleAdmin,
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "bearer "+adminToken) },
			expectedStatus: http.StatusOK,
			expectedUser:   "admin-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RoleMiddleware(tg, tt.requiredRole)(echoUser(t))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setupRequest(req)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUser, w.Header().Get("X-User"))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tg := service.NewTokenGenerator("secret", time.Hour, time.Hour)
	token, _, err := tg.GenerateTokens("learner-1", service.RoleLearner)
	require.NoError(t, err)

	handler := AuthMiddleware(tg)(echoUser(t))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "learner", w.Header().Get("X-Role"))
}

func TestAPIKeyMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name           string
		configured     string
		provided       string
		expectedStatus int
	}{
		{name: "valid", configured: "k1", provided: "k1", expectedStatus: http.StatusNoContent},
		{name: "wrong", configured: "k1", provided: "k2", expectedStatus: http.StatusUnauthorized},
		{name: "missing", configured: "k1", provided: "", expectedStatus: http.StatusUnauthorized},
		{name: "not configured", configured: "", provided: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			w := httptest.NewRecorder()
			APIKeyMiddleware(tt.configured)(ok).ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetUserID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req.Context())
	assert.False(t, ok)

	ctx := WithUser(req.Context(), "u-9", service.RoleAdmin)
	id, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-9", id)
}
