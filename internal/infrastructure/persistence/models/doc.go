// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, TenantAggregateModel)
//   - identity.go: tenants and users
//   - tramite.go: procedure categories and trámites
//   - counter.go: filing number sequence counters
//
// Table definitions live in the SQL migrations; AutoMigrate on these models is
// only used by tests running against SQLite.
package models
