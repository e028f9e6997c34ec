package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/server/respond"
	"expertcof/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 and counts it. A panic after the
// response has started only aborts the chain.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanic()
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    c.GetString(userIDKey),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.FullPath(),
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Erro interno do servidor.", nil)
		}()
		c.Next()
	}
}
