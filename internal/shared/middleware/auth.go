package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"tovakustatus-backend/internal/shared/response"
	"tovakustatus-backend/pkg/jwt"
)

const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// Authorizer resolves a bearer token to its claims. The auth service checks
// the signature and that the token still belongs to the active session.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*jwt.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := authz.Authorize(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "session expired, please log in again")
			c.Abort()
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
