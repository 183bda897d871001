package order

import (
	"context"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FilterStatus restricts listings to one status
const FilterStatus = "status"

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds orders matching the filter, newest first by default.
	// A zero PageSize returns every matching order.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new order
	Create(ctx context.Context, o *Order) error

	// Save updates an existing order
	Save(ctx context.Context, o *Order) error
}
