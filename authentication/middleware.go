package authentication

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// AuthMiddleware resolves the bearer token to an identity id and role and
// stores both on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		authHeader := strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer"))
		claims, err := Authenticate(authHeader)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrExpiredToken) {
				// expired is still unauthorized but gets its own message
				c.AbortWithStatusJSON(status, gin.H{"error": "Token has expired, please log in again"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects any authenticated request whose role differs from the
// one the route is gated on. Must run after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := c.Get(ctxRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if current.(models.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: this route requires " + role.String() + " privileges"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity id and role set by AuthMiddleware.
func CurrentUser(c *gin.Context) (uint, models.Role) {
	userID, _ := c.Get(ctxUserID)
	role, _ := c.Get(ctxRole)
	id, _ := userID.(uint)
	r, _ := role.(models.Role)
	return id, r
}
