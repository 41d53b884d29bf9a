package middleware

import (
	"time"

	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	loggerKey    = "logger"
	requestIDKey = "request_id"
	cartHeader   = "X-Cart-ID"
)

// quietPaths are polled by probes and scrapers; their completions log at debug
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggingMiddleware attaches a request-scoped logger and logs each completed request
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		fields := logger.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
		}
		if cartID := c.GetHeader(cartHeader); cartID != "" {
			fields["cart_id"] = cartID
		}
		log := logger.WithContext(fields)
		c.Set(loggerKey, log)

		c.Next()

		status := c.Writer.Status()
		done := logger.Fields{
			"status_code": status,
			"latency_ms":  time.Since(started).Milliseconds(),
			"body_size":   c.Writer.Size(),
			"route":       c.FullPath(),
		}
		if len(c.Errors) > 0 {
			done["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			log.Error("Request failed", nil, done)
		case status >= 400:
			log.Warn("Request rejected", done)
		case quietPaths[c.Request.URL.Path]:
			log.Debug("Request completed", done)
		default:
			log.Info("Request completed", done)
		}
	}
}

// GetLoggerFromContext returns the request logger, or the global one outside a request
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if log, ok := l.(*logger.Logger); ok {
			return log
		}
	}
	return logger.Get()
}
