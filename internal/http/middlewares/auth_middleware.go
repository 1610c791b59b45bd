package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/unilinkhq/unilink/internal/auth"
)

// SessionVerifier is the one capability the middleware needs; tests fake it.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	sessions SessionVerifier
}

func NewAuthMiddleware(sessions SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession resolves the bearer token against the session store and
// stashes the owning user id on the context. The three auth failures
// (missing header, unknown token, expired session) all answer 401 with
// distinct messages; a store fault answers 500 so an outage is never
// mistaken for a bad credential.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		userID, err := m.sessions.Verify(c.Request.Context(), token)

		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNoSession):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid session",
				})
			case errors.Is(err, auth.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Session expired",
				})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error: " + err.Error(),
				})
			}
			return
		}

		c.Set(CtxUserID, userID)

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
