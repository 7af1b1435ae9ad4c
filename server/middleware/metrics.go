package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionkit/observability"
)

// Metrics records request count, duration and in-flight requests per
// route template. Unmatched routes are labeled "unmatched".
func Metrics(m *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		m.RecordRequestStart(ctx)
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
