package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contract-console/internal/shared/telemetry"
)

// Context keys handlers set so the request log can pick them up.
const (
	DocumentIDKey = "documentId"
	ViewIDKey     = "viewId"
)

// Logging emits a structured log per request. State polls from open loading
// pages are logged at debug level to keep the stream readable.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"document_id": c.GetString(DocumentIDKey),
			"view_id":     c.GetString(ViewIDKey),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if strings.HasSuffix(c.FullPath(), "/state") && c.Writer.Status() < 400 {
			telemetry.Debug("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
