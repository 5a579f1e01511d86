package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/radicacion"
)

// SequenceCounterModel is one row per (tenant, category, year). LastValue is
// the last number handed out; a fresh row starts at zero.
type SequenceCounterModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_counter_key"`
	CategoryCode string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_sequence_counter_key"`
	Year         int       `gorm:"not null;uniqueIndex:idx_sequence_counter_key"`
	LastValue    int64     `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}

// Key returns the domain key of the counter
func (m *SequenceCounterModel) Key() radicacion.CounterKey {
	return radicacion.CounterKey{
		TenantID:     m.TenantID,
		CategoryCode: m.CategoryCode,
		Year:         m.Year,
	}
}

// ToSnapshot converts the row to a read-only domain snapshot
func (m *SequenceCounterModel) ToSnapshot() radicacion.CounterSnapshot {
	return radicacion.CounterSnapshot{
		Key:       m.Key(),
		LastValue: m.LastValue,
		IsActive:  m.IsActive,
		UpdatedAt: m.UpdatedAt,
	}
}
