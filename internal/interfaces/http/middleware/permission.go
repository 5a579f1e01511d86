package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/interfaces/http/dto"
)

// RequireRoles lets the request through only when the bound actor has one
// of roles. It must run after TenantScope.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := tenancy.ActorFromContext(c.Request.Context())
		if err != nil {
			status, resp := dto.ErrorResponseFor(err, GetRequestID(c))
			c.AbortWithStatusJSON(status, resp)
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden,
				"Access to this resource is forbidden",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// RequireAdmin allows global and tenant administrators
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(identity.RoleGlobalAdmin, identity.RoleTenantAdmin)
}
