package apperr

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Abort writes the translated error response and stops the handler chain. Failures
// that translate to a 5xx are logged with their cause, which never reaches the client.
func Abort(c *gin.Context, err error) {
	status, body := Translate(err)
	if status >= 500 {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
