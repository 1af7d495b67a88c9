package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/models"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/response"
)

// Gate enforces the role permission matrix against the request path. It
// must run after Auth, which stores the verified claims.
func Gate(table PermissionTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		route := RouteName(c.Request.URL.Path)
		if !table.Allows(claims.UserCategory, route) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Requested operation is not permitted."))
			return
		}

		c.Next()
	}
}
