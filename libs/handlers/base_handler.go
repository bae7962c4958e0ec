package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edulearn/platform/libs/validation"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondValidationError sends 400 with per-field messages
func (h *BaseHandler) RespondValidationError(w http.ResponseWriter, fields validation.Errors) {
	h.RespondJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// RespondServiceError maps a service error to a status code and writes it.
// Internal errors are logged and hidden behind a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		h.RespondValidationError(w, fields)
		return
	}

	status := StatusFromError(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(fallback, zap.Error(err))
		h.RespondError(w, status, fallback)
		return
	}
	h.RespondError(w, status, err.Error())
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and trailing data
func (h *BaseHandler) DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: unexpected trailing data")
	}
	return nil
}

// StatusFromError derives an HTTP status from the conventional error messages used by services
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "already"):
		return http.StatusConflict
	case strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "invalid refresh token"),
		strings.Contains(msg, "inactive"):
		return http.StatusUnauthorized
	case strings.Contains(msg, "forbidden"), strings.Contains(msg, "not enrolled"):
		return http.StatusForbidden
	case strings.Contains(msg, "invalid"),
		strings.Contains(msg, "required"),
		strings.Contains(msg, "must"),
		strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "empty"),
		strings.Contains(msg, "need at least"),
		strings.Contains(msg, "no data"),
		strings.Contains(msg, "do not match"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
