package models

import (
	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(16);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	TaxID    string `gorm:"column:tax_id;type:varchar(50);not null;uniqueIndex"`
	Address  string `gorm:"type:varchar(500)"`
	Phone    string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(200)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseEntity: m.BaseModel.Entity(),
		Code:       m.Code,
		Name:       m.Name,
		TaxID:      m.TaxID,
		Address:    m.Address,
		Phone:      m.Phone,
		Email:      m.Email,
		IsActive:   m.IsActive,
	}
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{
		Code:     t.Code,
		Name:     t.Name,
		TaxID:    t.TaxID,
		Address:  t.Address,
		Phone:    t.Phone,
		Email:    t.Email,
		IsActive: t.IsActive,
	}
	m.SetEntity(t.BaseEntity)
	return m
}

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	TenantID *uuid.UUID    `gorm:"type:uuid;index"`
	Username string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	FullName string        `gorm:"type:varchar(200)"`
	Email    string        `gorm:"type:varchar(200)"`
	Role     identity.Role `gorm:"type:varchar(20);not null"`
	IsActive bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: m.BaseModel.Entity(),
		TenantID:   m.TenantID,
		Username:   m.Username,
		FullName:   m.FullName,
		Email:      m.Email,
		Role:       m.Role,
		IsActive:   m.IsActive,
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		TenantID: u.TenantID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	m.SetEntity(u.BaseEntity)
	return m
}
