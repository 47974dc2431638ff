package middleware

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Logger middleware logs HTTP requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(RequestIDKey),
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case status >= 400:
			entry.WithField("errors", c.Errors.String()).Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}
