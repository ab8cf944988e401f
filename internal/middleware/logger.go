package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vroo/hr-tracker/pkg/logger"
)

// RequestLogger emits one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		event := log.ZL.Info()
		if c.Writer.Status() >= 500 {
			event = log.ZL.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery converts panics into 500 responses with a logged stack hint.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.ZL.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.AbortWithStatus(500)
	})
}
