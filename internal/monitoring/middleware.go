package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates gin middleware that logs each request and feeds the
// HTTP-facing counters.
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), statusCode, duration)

		for _, err := range c.Errors {
			logger.Error("request error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err.Err,
			)
		}
	}
}
