package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/persistence/models"
	"github.com/tramites/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCategoryRepository stores the trámite categories of each tenant
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category owned by tenantID. A category of another
// tenant is reported as not found.
func (r *GormCategoryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*tramite.Category, error) {
	var row models.CategoryModel
	query := r.db.WithContext(ctx).Scopes(tenant.TenantScope(tenantID)).Where("id = ?", id)
	if err := first(query, &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormCategoryRepository) Save(ctx context.Context, c *tramite.Category) error {
	return save(ctx, r.db, models.CategoryModelFromDomain(c))
}

var _ tramite.CategoryRepository = (*GormCategoryRepository)(nil)
