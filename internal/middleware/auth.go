package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/security"
)

type TokenValidator interface {
	ValidateToken(token string) (*security.AdminClaims, error)
}

// AdminAuth admits requests carrying an authenticated session cookie or a
// valid bearer token.
func AdminAuth(store sessions.Store, tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username, ok := sessionUsername(c, store); ok {
			c.Set(adminContextKey, username)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperr.ErrUnauthorized)
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abort(c, apperr.ErrUnauthorized.WithMessage("Invalid or expired token"))
			return
		}

		c.Set(adminContextKey, claims.Username)
		c.Next()
	}
}
