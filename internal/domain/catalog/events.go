package catalog

import (
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated     = "ProductCreated"
	EventTypeProductDeactivated = "ProductDeactivated"
	EventTypeReviewAdded        = "ReviewAdded"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Category:        product.Category,
	}
}

// ProductDeactivatedEvent is published when a product is soft-deleted
type ProductDeactivatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
}

// NewProductDeactivatedEvent creates a new ProductDeactivatedEvent
func NewProductDeactivatedEvent(product *Product) *ProductDeactivatedEvent {
	return &ProductDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeactivated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
	}
}

// ReviewAddedEvent is published after a review and the product aggregate are stored
type ReviewAddedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID `json:"product_id"`
	ReviewID     uuid.UUID `json:"review_id"`
	Rating       int       `json:"rating"`
	NewMean      float64   `json:"new_mean"`
	ReviewsCount int       `json:"reviews_count"`
}

// NewReviewAddedEvent creates a new ReviewAddedEvent
func NewReviewAddedEvent(product *Product, review *Review) *ReviewAddedEvent {
	return &ReviewAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewAdded, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ReviewID:        review.ID,
		Rating:          review.Rating,
		NewMean:         product.Rating,
		ReviewsCount:    product.ReviewsCount,
	}
}
