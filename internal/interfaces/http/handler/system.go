package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler serves liveness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]HealthCheck
}

// NewSystemHandler creates a new SystemHandler. checks are keyed by the
// dependency name reported in the health payload.
func NewSystemHandler(name, version string, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health answers 200 when every dependency responds and 503 otherwise.
//
//	GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.L(ctx).Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			body[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	c.JSON(status, body)
}

// Info returns the service name, version and uptime.
//
//	GET /api/v1/system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
