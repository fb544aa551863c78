package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aryanracha/civiclens/internal/pkg/response"
	"github.com/aryanracha/civiclens/internal/pkg/token"
)

// Auth verifies the bearer token (or the jwt cookie) and exposes the
// verified (userID, role) pair to handlers.
func Auth(tm *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Unauthorized(c, "Authorization required")
			c.Abort()
			return
		}

		claims, err := tm.Validate(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminOnly gates admin routes. Must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			response.AuthorizationError(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Support both "Bearer <token>" (case-insensitive) and a raw token
		fields := strings.Fields(authHeader)
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			return fields[1]
		}
		return authHeader
	}

	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}
