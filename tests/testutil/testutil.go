// Package testutil holds helpers shared by the integration suites.
package testutil

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/tenancy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ActorContext returns a background context carrying the actor and its
// resolved tenant scope. A nil tenantID is only valid for a global admin.
func ActorContext(t *testing.T, userID uuid.UUID, tenantID *uuid.UUID, role identity.Role) context.Context {
	t.Helper()
	ctx, err := tenancy.ContextWithActor(context.Background(), tenancy.Actor{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	})
	require.NoError(t, err)
	return ctx
}
