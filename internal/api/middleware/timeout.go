package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout sets a per-request context deadline. Renders can take a
// while under a cold TeX install, so the limit is configurable and generous.
// It does NOT forcibly kill the handler; downstream code must honor
// ctx.Done() — the runner does, exec.CommandContext kills the child.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		// If the context timed out and nothing was written, return 504.
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "render timeout",
			})
			return
		}
	}
}
