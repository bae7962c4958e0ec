package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edulearn/platform/libs/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "not found", err: errors.New("course not found"), expected: http.StatusNotFound},
		{name: "already enrolled", err: errors.New("already enrolled"), expected: http.StatusConflict},
		{name: "username exists", err: errors.New("username already exists"), expected: http.StatusConflict},
		{name: "credentials", err: errors.New("invalid credentials"), expected: http.StatusUnauthorized},
		{name: "not enrolled", err: errors.New("user is not enrolled in this course"), expected: http.StatusForbidden},
		{name: "validation", err: errors.New("password must be at least 6 characters"), expected: http.StatusBadRequest},
		{name: "unsupported", err: errors.New("unsupported chart type: Radar"), expected: http.StatusBadRequest},
		{name: "empty chart data", err: errors.New("no data available to create chart"), expected: http.StatusBadRequest},
		{name: "wrapped db error", err: fmt.Errorf("failed to query: %w", errors.New("connection reset")), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFromError(tt.err))
		})
	}
}

func TestBaseHandler_RespondServiceError(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}

	t.Run("internal error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.RespondServiceError(w, errors.New("failed to connect: dial tcp"), "failed to get course")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"failed to get course"}`, w.Body.String())
	})

	t.Run("client error is exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.RespondServiceError(w, errors.New("course not found"), "failed to get course")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"course not found"}`, w.Body.String())
	})

	t.Run("validation errors list fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.RespondServiceError(w, validation.Errors{"email": "email must be a valid email address"}, "x")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"validation failed","fields":{"email":"email must be a valid email address"}}`, w.Body.String())
	})
}

func TestBaseHandler_DecodeJSON(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}
	type payload struct {
		Topic string `json:"topic"`
	}

	tests := []struct {
		name          string
		body          string
		expectedError bool
	}{
		{name: "valid", body: `{"topic":"python"}`},
		{name: "unknown field", body: `{"topic":"python","x":1}`, expectedError: true},
		{name: "trailing data", body: `{"topic":"python"}{}`, expectedError: true},
		{name: "malformed", body: `{"topic":`, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := h.DecodeJSON(req, &p)
			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid request body")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "python", p.Topic)
		})
	}
}
