package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bizdesk/pkg/utils"
)

// Principal is the authenticated caller as resolved by the identity provider.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (*Principal, error)
}

func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		principal, err := verifier.VerifyToken(c.Request.Context(), tokenString)
		if err != nil || principal == nil || principal.UserID == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", principal.UserID)
		c.Set("email", principal.Email)
		c.Set("Role", principal.Role)
		c.Next()
	}
}

// RoleMiddleware lets the request through when the caller holds any of roles.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToLower(c.GetString("Role"))

		for _, r := range roles {
			if role == strings.ToLower(r) {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
		c.Abort()
	}
}
