package middleware

import (
	"strconv"
	"time"

	"github.com/amaretto/amaretto-backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records HTTP metrics for each request, labelled by route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()

		c.Next()

		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
