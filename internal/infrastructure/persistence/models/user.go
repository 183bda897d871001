package models

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/identity"
)

// UserModel is the persistence model for storefront accounts.
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(80);not null;uniqueIndex"`
	Email        string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null;default:'client'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.aggregate(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.setAggregate(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
