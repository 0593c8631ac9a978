package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsdeck/opsdeck/internal/identity"
)

// RequestLogger emits one structured line per finished request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// PrincipalMiddleware lifts the proxy-supplied identity headers into
// request context. The principal is display-only input; requests
// without the headers pass through anonymously.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		email := strings.TrimSpace(c.GetHeader("X-User-Email"))
		if userID != "" || email != "" {
			ctx := identity.WithPrincipal(c.Request.Context(), identity.Principal{
				UserID: userID,
				Email:  email,
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
