package event

import (
	"context"
	"fmt"

	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderRecorder records placed orders, e.g. as metrics
type OrderRecorder interface {
	OrderPlaced(itemCount int, total decimal.Decimal)
}

// OrderPlacedHandler logs every placed order and feeds the recorder
type OrderPlacedHandler struct {
	recorder OrderRecorder
	logger   *zap.Logger
}

// NewOrderPlacedHandler creates a new OrderPlacedHandler. recorder may be nil.
func NewOrderPlacedHandler(recorder OrderRecorder, logger *zap.Logger) *OrderPlacedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPlacedHandler{recorder: recorder, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle implements shared.EventHandler
func (h *OrderPlacedHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, order.EventTypeOrderPlaced)
	}

	fields := []zap.Field{
		zap.String("order_id", placed.OrderID.String()),
		zap.Int("item_count", placed.ItemCount),
		zap.String("total_amount", placed.TotalAmount.String()),
	}
	if placed.UserID != nil {
		fields = append(fields, zap.String("user_id", placed.UserID.String()))
	}
	h.logger.Info("Order placed", fields...)

	if h.recorder != nil {
		h.recorder.OrderPlaced(placed.ItemCount, placed.TotalAmount)
	}
	return nil
}

// AuditHandler logs every domain event at debug level
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{logger: logger}
}

// EventTypes returns nil so the handler receives every event
func (h *AuditHandler) EventTypes() []string {
	return nil
}

// Handle implements shared.EventHandler
func (h *AuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Debug("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()))
	return nil
}
