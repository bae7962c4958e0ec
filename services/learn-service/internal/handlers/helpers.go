package handlers

import (
	"net/http"

	authMiddleware "github.com/edulearn/platform/libs/auth/middleware"
	"github.com/edulearn/platform/libs/handlers"
)

// currentUser extracts the authenticated user ID or writes 401
func currentUser(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return "", false
	}
	return userID, true
}
