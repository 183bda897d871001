package models

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the id and timestamp columns every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate fills what a row built outside the domain (fixtures,
// tests) may have left zero.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	return nil
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the optimistic lock column. Domain events stay in
// memory and are never stored.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) setAggregate(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// All lists every model for AutoMigrate, referenced tables first
func All() []any {
	return []any{
		&ProductModel{},
		&ReviewModel{},
		&UserModel{},
		&OrderModel{},
		&ArticleModel{},
		&CaseStudyModel{},
	}
}
