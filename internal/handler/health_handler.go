package handler

import (
	"context"
	"net/http"
	"time"

	"portfolio-api/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := "healthy"
	code := http.StatusOK

	if err := h.container.DB.Health(ctx); err != nil {
		log.WithError(err).Error("Database health check failed")
		checks["database"] = "unhealthy"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if h.container.HasRedis() {
		if err := h.container.RedisClient.Health(ctx); err != nil {
			log.WithError(err).Warn("Redis health check failed")
			checks["redis"] = "unhealthy"
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not_configured"
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   "portfolio-api",
		Checks:    checks,
	}, log)
}
