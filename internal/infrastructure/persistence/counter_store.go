package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/infrastructure/persistence/models"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLockTimeout bounds the wait for a counter row lock
const DefaultLockTimeout = 5 * time.Second

// GormCounterStore implements radicacion.CounterStore on the
// sequence_counters table. Each Next call is one transaction: insert the
// row if absent, lock it, increment it, run the issue callback. Rows for
// different keys never block each other.
type GormCounterStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
	now         func() time.Time
}

// NewGormCounterStore creates a new GormCounterStore. A non-positive
// lockTimeout falls back to DefaultLockTimeout.
func NewGormCounterStore(db *gorm.DB, lockTimeout time.Duration) *GormCounterStore {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &GormCounterStore{db: db, lockTimeout: lockTimeout, now: time.Now}
}

// Next returns the next value for key, starting at 1. issue runs on the
// locked row's transaction, so a failed insert gives the value back.
func (s *GormCounterStore) Next(ctx context.Context, key radicacion.CounterKey, issue radicacion.IssueFunc) (value int64, err error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	ctx, span := telemetry.StartSpan(ctx, "radicacion.counter_next",
		telemetry.SpanAttrTenantID, key.TenantID,
		telemetry.SpanAttrCategoryCode, key.CategoryCode,
		telemetry.SpanAttrYear, key.Year,
	)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.SetAttributes(span, telemetry.SpanAttrSequence, value)
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var issueErr error
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			// SET does not take bind parameters
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		now := s.now()
		seed := models.SequenceCounterModel{
			TenantID:     key.TenantID,
			CategoryCode: key.CategoryCode,
			Year:         key.Year,
			LastValue:    0,
			IsActive:     true,
			UpdatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "category_code"}, {Name: "year"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var row models.SequenceCounterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND category_code = ? AND year = ?", key.TenantID, key.CategoryCode, key.Year).
			First(&row).Error; err != nil {
			return err
		}

		next := row.LastValue + 1
		result := tx.Model(&models.SequenceCounterModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"last_value": next,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("counter %s: expected 1 row updated, got %d", key, result.RowsAffected)
		}
		if issue != nil {
			if issueErr = issue(withTx(ctx, tx), next); issueErr != nil {
				return issueErr
			}
		}
		value = next
		return nil
	})
	if issueErr != nil {
		return 0, issueErr
	}
	if err != nil {
		return 0, classifyAllocationError(key, err)
	}
	return value, nil
}

// Snapshots returns the active counters of a tenant for a year, ordered by
// category code
func (s *GormCounterStore) Snapshots(ctx context.Context, tenantID uuid.UUID, year int) ([]radicacion.CounterSnapshot, error) {
	var rows []models.SequenceCounterModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND year = ? AND is_active = ?", tenantID, year, true).
		Order("category_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	snapshots := make([]radicacion.CounterSnapshot, len(rows))
	for i := range rows {
		snapshots[i] = rows[i].ToSnapshot()
	}
	return snapshots, nil
}

// DeactivateBefore flags counters of years before year inactive. Rows are
// kept and never reactivated; Next keeps counting on them for late filings
// dated in a past year, without changing the flag.
func (s *GormCounterStore) DeactivateBefore(ctx context.Context, year int) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.SequenceCounterModel{}).
		Where("year < ? AND is_active = ?", year, true).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": s.now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// classifyAllocationError maps storage failures onto the two allocation
// errors. Only lock waits that ran out become ErrAllocationTimeout.
func classifyAllocationError(key radicacion.CounterKey, err error) error {
	if isLockTimeout(err) {
		return fmt.Errorf("%w: counter %s: %v", radicacion.ErrAllocationTimeout, key, err)
	}
	return fmt.Errorf("%w: counter %s: %v", radicacion.ErrAllocationFailed, key, err)
}

func isLockTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return telemetry.IsLockTimeout(err)
}
