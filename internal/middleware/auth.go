package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/service"
	appErrors "github.com/twoschool/twoschool-api/pkg/errors"
	"github.com/twoschool/twoschool-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextAccountKey is the gin context key storing the live account record
// the token was verified against.
const ContextAccountKey = "currentAccount"

// Auth protects routes by requiring a valid access token whose bearer still
// exists in the account table named by the token's category claim.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		token := header
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}

		claims, user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextAccountKey, user)
		c.Next()
	}
}
