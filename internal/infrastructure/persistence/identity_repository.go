package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// first loads one row into dest, mapping a missing row to shared.ErrNotFound
func first(query *gorm.DB, dest any) error {
	err := query.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// save upserts a row, mapping unique violations to shared.ErrAlreadyExists
func save(ctx context.Context, db *gorm.DB, row any) error {
	err := db.WithContext(ctx).Save(row).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// GormTenantRepository stores tenants. Tenants sit outside every scope:
// lookups here are not filtered.
type GormTenantRepository struct {
	db *gorm.DB
}

func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var row models.TenantModel
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByCode matches the radicación code case-insensitively
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var row models.TenantModel
	query := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code)))
	if err := first(query, &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	return save(ctx, r.db, models.TenantModelFromDomain(t))
}

// ActiveIDs lists active tenants in code order
func (r *GormTenantRepository) ActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("is_active = ?", true).
		Order("code").
		Pluck("id", &ids).Error
	return ids, err
}

// GormUserRepository stores users of every tenant
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID ignores the caller's scope. The reviewer check compares the
// user's tenant itself and needs to see users of other tenants to do so.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var row models.UserModel
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &row); err != nil {
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return save(ctx, r.db, models.UserModelFromDomain(u))
}

var (
	_ identity.TenantRepository = (*GormTenantRepository)(nil)
	_ identity.UserRepository   = (*GormUserRepository)(nil)
)
