package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/patient-provisioning/pkg/helpers"
	"github.com/oksasatya/patient-provisioning/pkg/response"
)

const (
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"

	bearerPrefix = "Bearer "
)

// Auth validates the Authorization bearer header and injects the token's
// subject and role into the Gin context. An absent or malformed header
// is rejected before any business logic runs, and all token failures
// produce the same response.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserEmailKey, claims.Subject)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Next()
	}
}
