package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/domain/tramite"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "tenants", TenantModel{}.TableName())
	assert.Equal(t, "users", UserModel{}.TableName())
	assert.Equal(t, "tramite_categories", CategoryModel{}.TableName())
	assert.Equal(t, "tramites", TramiteModel{}.TableName())
	assert.Equal(t, "sequence_counters", SequenceCounterModel{}.TableName())
}

func TestTramiteModel_RoundTrip(t *testing.T) {
	tenantID := uuid.New()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 1, 0)

	tr, err := tramite.NewTramite(tenantID, "T1-CL-2024-0001", uuid.New(), uuid.New(), tramite.Details{
		Subject:         "Licencia de construcción",
		PropertyAddress: "Calle 10 # 5-20",
		NextDueAt:       &due,
	}, now)
	require.NoError(t, err)

	reviewer, err := identity.NewUser(&tenantID, "revisor", "Ana", identity.RoleReviewer)
	require.NoError(t, err)
	require.NoError(t, tr.AssignReviewer(reviewer, tenancy.Scoped(tenantID), "asignado", uuid.New(), now.Add(time.Hour)))

	model := TramiteModelFromDomain(tr)
	assert.Equal(t, tenantID, model.TenantID)
	assert.Equal(t, 2, model.Version)
	assert.Equal(t, tramite.StatusAssigned, model.Status)

	back := model.ToDomain()
	assert.Equal(t, tr.ID, back.ID)
	assert.Equal(t, tr.FilingNumber, back.FilingNumber)
	assert.Equal(t, tr.Status, back.Status)
	assert.Equal(t, tr.ReviewerID, back.ReviewerID)
	assert.Equal(t, tr.ReviewerComments, back.ReviewerComments)
	assert.Equal(t, tr.StatusChangedAt, back.StatusChangedAt)
	assert.Equal(t, tr.NextDueAt, back.NextDueAt)
	assert.Equal(t, tr.CreatedBy, back.CreatedBy)
	assert.Empty(t, back.GetDomainEvents())
}

func TestTramiteModel_LifecycleColumns(t *testing.T) {
	finalized := time.Now()
	m := &TramiteModel{Status: tramite.StatusApproved, FinalizedAt: &finalized}
	m.Version = 4

	cols := m.LifecycleColumns()
	assert.Equal(t, tramite.StatusApproved, cols["status"])
	assert.Equal(t, 4, cols["version"])
	assert.NotContains(t, cols, "filing_number")
	assert.NotContains(t, cols, "requester_id")
	assert.NotContains(t, cols, "filed_at")
}

func TestSequenceCounterModel_ToSnapshot(t *testing.T) {
	tenantID := uuid.New()
	m := &SequenceCounterModel{TenantID: tenantID, CategoryCode: "CL", Year: 2024, LastValue: 7, IsActive: true}

	snap := m.ToSnapshot()
	assert.Equal(t, radicacion.CounterKey{TenantID: tenantID, CategoryCode: "CL", Year: 2024}, snap.Key)
	assert.Equal(t, int64(7), snap.LastValue)
	assert.True(t, snap.IsActive)
}
