package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-console/internal/shared/server/respond"
	"contract-console/internal/shared/telemetry"
)

const panicMessage = "Unexpected server error"

// Recovery turns a panic into a standardized error. Browsers navigating to a
// view get the error page, everything else the JSON error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"document_id": c.Param("documentId"),
				"error":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
				"path":        c.Request.URL.Path,
				"method":      c.Request.Method,
			})
			if wantsPage(c) {
				respond.Page(c, http.StatusInternalServerError, "internal", panicMessage, nil)
			} else {
				respond.Error(c, http.StatusInternalServerError, "internal", panicMessage, nil)
			}
			c.Abort()
		}()
		c.Next()
	}
}

func wantsPage(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet &&
		strings.Contains(c.GetHeader("Accept"), "text/html")
}
