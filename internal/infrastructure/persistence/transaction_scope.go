package persistence

import (
	"context"

	appcatalog "github.com/dentalshop/backend/internal/application/catalog"
	apporder "github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/order"
	"gorm.io/gorm"
)

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ReviewRepo returns the review repository scoped to the current transaction
func (r *gormTransactionalRepositories) ReviewRepo() catalog.ReviewRepository {
	return NewGormReviewRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// GormReviewScope runs review writes and the rating recomputation atomically
type GormReviewScope struct {
	db *gorm.DB
}

// NewGormReviewScope creates a new GormReviewScope
func NewGormReviewScope(db *gorm.DB) *GormReviewScope {
	return &GormReviewScope{db: db}
}

// Execute runs fn within a database transaction; an error rolls it back
func (s *GormReviewScope) Execute(ctx context.Context, fn func(repos appcatalog.ReviewRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormCheckoutScope runs stock decrements and the order insert atomically
type GormCheckoutScope struct {
	db *gorm.DB
}

// NewGormCheckoutScope creates a new GormCheckoutScope
func NewGormCheckoutScope(db *gorm.DB) *GormCheckoutScope {
	return &GormCheckoutScope{db: db}
}

// Execute runs fn within a database transaction; an error rolls it back
func (s *GormCheckoutScope) Execute(ctx context.Context, fn func(repos apporder.CheckoutRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var _ appcatalog.ReviewTransactionScope = (*GormReviewScope)(nil)

var _ apporder.CheckoutTransactionScope = (*GormCheckoutScope)(nil)
