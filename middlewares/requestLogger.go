package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/utils"
	"github.com/sirupsen/logrus"
)

// RequestLoggerMiddleware logs one structured line per request at info
// level; errors collected by handlers are appended.
func RequestLoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		entry := logger.WithFields(logrus.Fields{
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         c.Writer.Status(),
			"duration_ms":    time.Since(start).Milliseconds(),
			"correlation_id": cid,
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}
