package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/auth"
	"carsource_backend/internal/logger"
	"carsource_backend/internal/models"
	"carsource_backend/pkg/apperrors"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// AuthMiddleware validates the bearer token and stores the caller's
// identity on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header is required"))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header must be a bearer token"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allow list.
// Mount after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		apperrors.HandleError(c, apperrors.NewForbiddenError("Insufficient permissions"))
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}
