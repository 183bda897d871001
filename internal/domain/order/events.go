package order

import (
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedEvent is published after an order commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		ItemCount:       o.ItemCount(),
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is published when an admin changes the status
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OldStatus:       old,
		NewStatus:       o.Status,
	}
}
