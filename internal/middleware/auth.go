package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// Session protects routes for one role. The token is read from that role's
// cookie only, so an admin cookie never opens an applicant route.
func Session(authService *service.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(role.CookieName())
		if err != nil || token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if claims.Role != role {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireSuperAdmin runs after Session and gates super-admin-only routes.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil || !claims.IsSuperAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "super admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the session claims set by Session, or nil.
func ClaimsFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
