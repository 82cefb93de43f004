package middleware

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template, so path
// parameters do not multiply the series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
