package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/pkg/errors"
)

const userContextKey = "user"

// SessionChecker is the session store as seen by the gate
type SessionChecker interface {
	HasSession(ctx context.Context) bool
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// RequireSession rejects requests while no operator is logged in and puts
// the stored profile, when readable, in the context.
func RequireSession(sessions SessionChecker, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if !sessions.HasSession(ctx) {
			logger.Debug("Request without session", zap.String("path", c.Request.URL.Path))
			apiErr := errors.Classify(&errors.ErrUnauthorized{Message: "no active session"})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    apiErr.Kind.String(),
				"message": locale.Translate(printer, apiErr.Message),
				"detail":  locale.Translate(printer, apiErr.Detail),
			})
			return
		}

		user, err := sessions.CurrentUser(ctx)
		if err != nil {
			logger.Warn("Failed to read session profile", zap.Error(err))
		}
		if user != nil {
			c.Set(userContextKey, user)
		}

		c.Next()
	}
}

// GetUserFromContext returns the logged-in profile set by RequireSession
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*domain.User)
	return u, ok
}
