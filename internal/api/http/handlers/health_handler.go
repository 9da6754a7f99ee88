package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/persistence"
)

// HealthHandler responds to the liveness probe.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Check handles GET /health: status, timestamp and dependency reachability.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{}
	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
	} else {
		deps["postgres"] = "ok"
	}
	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
	} else {
		deps["redis"] = "ok"
	}

	return c.JSON(fiber.Map{
		"status":       "healthy",
		"service":      h.serviceName,
		"version":      h.version,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}
