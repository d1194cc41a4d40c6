package middleware

import (
	"time"

	"caja/src/shared/infrastructure/requestctx"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger registra cada petición con logrus. Las rutas excluidas no se loguean.
func RequestLogger(log logrus.FieldLogger, excludedPaths []string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(excludedPaths))
	for _, p := range excludedPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestctx.RequestIDFromContext(c.Request.Context()),
		})
		if user := requestctx.UserFromContext(c.Request.Context()); user != "" {
			entry = entry.WithField("user", user)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Recovery convierte un panic en un 500 y lo loguea
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		}).Error("💥 panic recovered")
		c.AbortWithStatusJSON(500, gin.H{"error": "internal error", "code": "UNKNOWN"})
	})
}
