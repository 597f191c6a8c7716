package middleware

import (
	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/response"
	"tovakustatus-backend/pkg/jwt"
)

// AdminMiddleware requires the admin role set by AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != jwt.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
