package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/edulearn/platform/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger checks a dependency
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service liveness and store reachability
type HealthHandler struct {
	handlers.BaseHandler
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: handlers.BaseHandler{Logger: logger}, db: db}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "Service is healthy"
// @Failure 503 {object} map[string]string "Store unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		h.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "store": "unreachable"})
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "store": "ok"})
}
