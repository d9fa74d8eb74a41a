package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/promptshare/internal/pkg/jwt"
	"github.com/xyz-asif/promptshare/internal/pkg/response"
)

// NewAuthMiddleware creates a Gin middleware for session token authentication
func NewAuthMiddleware(service *Service, jwtCfg *jwt.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(parts[1], jwtCfg)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		user, err := service.CurrentUser(c.Request.Context(), claims.UserID)
		if err != nil {
			// a deleted user or a store outage both end the session
			response.Unauthorized(c, "User not found", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID.Hex())
		c.Set("email", user.Email)
		c.Next()
	}
}
