package server

import (
	"time"

	"groundslot/internal/auth"
	"groundslot/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs each request once it has been handled,
// including the calling channel when the gate identified one.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if channelID, ok := auth.GetChannelID(c); ok {
			fields = append(fields, "channel", channelID)
		}

		if c.Writer.Status() >= 500 {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
