package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/tramite"
)

// CategoryModel is the persistence model for a procedure category.
type CategoryModel struct {
	BaseModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_tenant_code"`
	Code        string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_category_tenant_code"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "tramite_categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *tramite.Category {
	return &tramite.Category{
		BaseEntity:  m.BaseModel.Entity(),
		TenantID:    m.TenantID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category.
func CategoryModelFromDomain(c *tramite.Category) *CategoryModel {
	m := &CategoryModel{
		TenantID:    c.TenantID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
	m.SetEntity(c.BaseEntity)
	return m
}

// TramiteModel is the persistence model for the Tramite aggregate.
type TramiteModel struct {
	TenantAggregateModel
	FilingNumber       string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	CategoryID         uuid.UUID      `gorm:"type:uuid;not null"`
	RequesterID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	ReviewerID         *uuid.UUID     `gorm:"type:uuid;index"`
	Status             tramite.Status `gorm:"type:varchar(30);not null"`
	Subject            string         `gorm:"type:varchar(500);not null"`
	ProjectDescription string         `gorm:"type:text"`
	PropertyAddress    string         `gorm:"type:varchar(500)"`
	Observations       string         `gorm:"type:text"`
	ReviewerComments   string         `gorm:"type:text"`
	FiledAt            time.Time      `gorm:"not null"`
	StatusChangedAt    time.Time      `gorm:"not null"`
	NextDueAt          *time.Time
	CompleteBy         *time.Time
	FinalizedAt        *time.Time
}

// TableName returns the table name for GORM
func (TramiteModel) TableName() string {
	return "tramites"
}

// ToDomain converts the persistence model to a domain Tramite.
func (m *TramiteModel) ToDomain() *tramite.Tramite {
	return &tramite.Tramite{
		TenantAggregateRoot: m.Root(),
		FilingNumber:        m.FilingNumber,
		CategoryID:          m.CategoryID,
		RequesterID:         m.RequesterID,
		ReviewerID:          m.ReviewerID,
		Status:              m.Status,
		Subject:             m.Subject,
		ProjectDescription:  m.ProjectDescription,
		PropertyAddress:     m.PropertyAddress,
		Observations:        m.Observations,
		ReviewerComments:    m.ReviewerComments,
		FiledAt:             m.FiledAt,
		StatusChangedAt:     m.StatusChangedAt,
		NextDueAt:           m.NextDueAt,
		CompleteBy:          m.CompleteBy,
		FinalizedAt:         m.FinalizedAt,
	}
}

// TramiteModelFromDomain creates a new persistence model from a domain Tramite.
func TramiteModelFromDomain(t *tramite.Tramite) *TramiteModel {
	m := &TramiteModel{
		FilingNumber:       t.FilingNumber,
		CategoryID:         t.CategoryID,
		RequesterID:        t.RequesterID,
		ReviewerID:         t.ReviewerID,
		Status:             t.Status,
		Subject:            t.Subject,
		ProjectDescription: t.ProjectDescription,
		PropertyAddress:    t.PropertyAddress,
		Observations:       t.Observations,
		ReviewerComments:   t.ReviewerComments,
		FiledAt:            t.FiledAt,
		StatusChangedAt:    t.StatusChangedAt,
		NextDueAt:          t.NextDueAt,
		CompleteBy:         t.CompleteBy,
		FinalizedAt:        t.FinalizedAt,
	}
	m.SetRoot(t.TenantAggregateRoot)
	return m
}

// LifecycleColumns returns the columns a status change may touch. The
// filing number, requester and filing time are never part of an update.
func (m *TramiteModel) LifecycleColumns() map[string]any {
	return map[string]any{
		"status":            m.Status,
		"reviewer_id":       m.ReviewerID,
		"reviewer_comments": m.ReviewerComments,
		"status_changed_at": m.StatusChangedAt,
		"finalized_at":      m.FinalizedAt,
		"version":           m.Version,
		"updated_at":        m.UpdatedAt,
	}
}
