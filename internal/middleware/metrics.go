package middleware

import (
	"time"

	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency keyed by the matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.Started()
		c.Next()
		m.Observe(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
