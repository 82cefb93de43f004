package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 2 * time.Second

// Logging logs each request once it completes. The level follows the
// status: 5xx errors, 4xx and slow requests warnings, the rest info.
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		ctx := c.Request.Context()
		status := c.Writer.Status()

		var b *logger.ContextLogBuilder
		switch {
		case status >= 500:
			b = log.ErrorWithContext(ctx, "Server error")
		case status >= 400:
			b = log.WarnWithContext(ctx, "Client error")
		case latency > slowRequestThreshold:
			b = log.WarnWithContext(ctx, "Slow request")
		default:
			b = log.InfoWithContext(ctx, "Request completed")
		}

		b = b.Method(c.Request.Method).
			Path(c.Request.URL.Path).
			String("query", c.Request.URL.RawQuery).
			String("route", c.FullPath()).
			StatusCode(status).
			Int("response_size", c.Writer.Size()).
			Duration(latency)
		if len(c.Errors) > 0 {
			b = b.String("errors", c.Errors.String())
		}
		b.Log()
	}
}

// Recovery turns panics into a 500 with the standard error body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorWithContext(c.Request.Context(), "Panic recovered").
			Method(c.Request.Method).
			Path(c.Request.URL.Path).
			String("stack", string(debug.Stack())).
			Err(fmt.Errorf("%v", recovered)).
			Log()

		abortWithError(c, fmt.Errorf("panic: %v", recovered))
	})
}
