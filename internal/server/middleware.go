package server

import (
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the caller's session key. The server mints a key for
// requests that arrive without one and echoes it back so clients can persist
// it.
const SessionHeader = "X-Session-Key"

const sessionContextKey = "sessionKey"

func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(SessionHeader))
		if key == "" {
			key = uuid.NewString()
		}
		c.Set(sessionContextKey, key)
		c.Header(SessionHeader, key)
		c.Next()
	}
}

func sessionKey(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond).String())
	}
}

func recoveryLogger(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		logger.Error("handler panic", "path", c.Request.URL.Path, "panic", err)
		c.AbortWithStatusJSON(500, gin.H{"error": "internal error"})
	}
}
