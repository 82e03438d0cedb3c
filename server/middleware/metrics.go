package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinicq/observability"
)

// RequestMetrics records OpenTelemetry request metrics labelled by the
// matched route template.
func RequestMetrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
