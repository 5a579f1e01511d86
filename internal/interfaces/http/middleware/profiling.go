package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
)

// Profiling attaches route, method and tenant labels to profile samples
// taken while the rest of the chain runs. Routes behind authentication must
// install it after TenantScope to get the tenant label; anonymous routes
// are labelled "public". Disabled returns a pass-through handler.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:   c.Request.Method,
			telemetry.ProfilingLabelRoute:    c.FullPath(),
			telemetry.ProfilingLabelTenantID: profilingTenant(c.Request.Context()),
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingTenant(ctx context.Context) string {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return "public"
	}
	return scope.String()
}
