package catalog

import (
	"context"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter keys understood by ProductRepository
const (
	FilterCategory = "category"
	FilterIsActive = "is_active"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID regardless of activity
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLowStock finds active products whose stock is below threshold
	FindLowStock(ctx context.Context, threshold int) ([]Product, error)

	// CountActiveByCategory counts active products per category
	CountActiveByCategory(ctx context.Context) ([]CategoryCount, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// DecrementStock atomically removes quantity units from an active product.
	// Returns shared.ErrInsufficientStock when fewer units remain.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	// Create stores a new review
	Create(ctx context.Context, review *Review) error

	// FindByProduct lists a product's reviews newest first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)

	// SummaryForProduct returns the rating aggregate over all stored reviews
	SummaryForProduct(ctx context.Context, productID uuid.UUID) (ReviewSummary, error)
}
