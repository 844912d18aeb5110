package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"blogsupport/internal/models"
)

const currentUserKey = "current_user"

// Resolver turns a session token into the account it authenticates.
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

// Gate authenticates the session cookie. Public routes proceed without an
// account when the cookie is absent or does not verify; protected routes
// are rejected in both cases.
func Gate(resolver Resolver, cookieName string, public bool, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			if public {
				c.Next()
				return
			}
			rejectUnauthorized(c)
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			log.Debug().
				Err(err).
				Str("path", c.FullPath()).
				Str("client_ip", c.ClientIP()).
				Msg("session token rejected")
			if public {
				c.Next()
				return
			}
			rejectUnauthorized(c)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the account attached by Gate, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func rejectUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"error":      "unauthorized",
		"message":    "Unauthorized",
	})
}
