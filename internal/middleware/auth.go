package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/developmentHC/conectaBemBack/internal/config"
	"github.com/developmentHC/conectaBemBack/internal/models"
	"github.com/developmentHC/conectaBemBack/internal/services"
	"github.com/developmentHC/conectaBemBack/internal/utils"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil || claims.UserID == "" {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)

		// enrich the request logger with the caller
		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "Acesso negado.")
		c.Abort()
	}
}

// GetUserIDFromContext returns the authenticated user id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok && idStr != ""
}

// GetUserRoleFromContext returns the role carried by the access token.
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(userRoleKey)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// Caller builds the caller identity passed to the appointment manager. It is
// empty when the request is not authenticated.
func Caller(c *gin.Context) services.CallerContext {
	id, _ := GetUserIDFromContext(c)
	role, _ := GetUserRoleFromContext(c)
	return services.CallerContext{ID: id, Role: role}
}
