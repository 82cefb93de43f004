package handler

import (
	"net/http"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/pkg/health"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	monitor *health.Monitor
	version string
	log     *logger.Logger
}

func NewHealthHandler(monitor *health.Monitor, version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{monitor: monitor, version: version, log: log}
}

// HealthCheck pings every registered dependency. Only a failing required
// dependency turns the response into a 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	report := h.monitor.Check(ctx)

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	h.log.DebugWithContext(ctx, "Health check performed").
		String("overall_status", string(report.Status)).
		StatusCode(status).
		Log()

	c.JSON(status, report)
}

// BasicHealth returns a simple liveness response for load balancers.
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    health.StatusHealthy,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
	})
}
