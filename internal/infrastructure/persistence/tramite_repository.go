package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/persistence/models"
	"github.com/tramites/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTramiteRepository implements tramite.Repository using GORM. Reads and
// writes are filtered by the tenant scope carried in ctx.
type GormTramiteRepository struct {
	db *tenant.TenantDB
}

// NewGormTramiteRepository creates a new GormTramiteRepository
func NewGormTramiteRepository(db *gorm.DB) *GormTramiteRepository {
	return &GormTramiteRepository{db: tenant.NewTenantDB(db)}
}

// Create inserts a new trámite. The scope in ctx must allow its tenant.
// Inside a counter's issue callback it joins the counter's transaction.
func (r *GormTramiteRepository) Create(ctx context.Context, t *tramite.Tramite) error {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	if !scope.Allows(t.TenantID) {
		return shared.ErrNotFound
	}

	model := models.TramiteModelFromDomain(t)
	if err := txFrom(ctx, r.db.Unscoped()).WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("filing number %s: %w", t.FilingNumber, shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByID finds a trámite visible in the current scope
func (r *GormTramiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*tramite.Tramite, error) {
	var model models.TramiteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists trámites visible in the current scope with the total count
func (r *GormTramiteRepository) FindAll(ctx context.Context, filter tramite.Filter) ([]tramite.Tramite, int64, error) {
	f := filter.Normalized()

	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&models.TramiteModel{}), filter)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TramiteModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TramiteModel{}), filter).
		Order(tramiteOrdering.clause(f.OrderBy, f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]tramite.Tramite, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

// Update locks the row, applies fn and writes the lifecycle columns back in
// one transaction. Concurrent updates of the same trámite run one after the
// other; the second sees the first one's result.
func (r *GormTramiteRepository) Update(ctx context.Context, id uuid.UUID, fn func(t *tramite.Tramite) error) (*tramite.Tramite, error) {
	var updated *tramite.Tramite
	err := r.db.Transaction(ctx, func(tx *gorm.DB, scope tenancy.Scope) error {
		var model models.TramiteModel
		if err := tx.Scopes(tenant.ForScope(scope)).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		t := model.ToDomain()
		previousVersion := t.Version
		if err := fn(t); err != nil {
			return err
		}
		if t.Version == previousVersion {
			updated = t
			return nil
		}

		next := models.TramiteModelFromDomain(t)
		result := tx.Model(&models.TramiteModel{}).
			Where("id = ? AND version = ?", id, previousVersion).
			Updates(next.LifecycleColumns())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindByFilingNumber finds a trámite across all tenants
func (r *GormTramiteRepository) FindByFilingNumber(ctx context.Context, filingNumber string) (*tramite.Tramite, error) {
	var model models.TramiteModel
	if err := r.db.Unscoped().WithContext(ctx).
		Where("filing_number = ?", filingNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormTramiteRepository) applyFilter(query *gorm.DB, filter tramite.Filter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("filing_number LIKE ? OR subject LIKE ?", keyword, keyword)
	}
	return query
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Ensure GormTramiteRepository implements tramite.Repository
var _ tramite.Repository = (*GormTramiteRepository)(nil)
