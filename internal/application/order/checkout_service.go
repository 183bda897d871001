package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalshop/backend/internal/domain/cart"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is returned when checking out a session with nothing in it
	ErrEmptyCart = shared.NewDomainError(order.CodeEmptyOrder, "Cart is empty")
	// ErrProductNotFound is returned when an ordered product does not exist
	ErrProductNotFound = shared.NotFound("Product not found")
)

// CheckoutRepositories exposes the repositories bound to one transaction
type CheckoutRepositories interface {
	ProductRepo() catalog.ProductRepository
	OrderRepo() order.OrderRepository
}

// CheckoutTransactionScope runs fn atomically; an error rolls everything back
type CheckoutTransactionScope interface {
	Execute(ctx context.Context, fn func(repos CheckoutRepositories) error) error
}

// placement is everything needed to turn requested lines into an order
type placement struct {
	lines         []cart.Line
	customerName  string
	customerPhone string
	userID        *uuid.UUID
	message       *string
	expectedTotal *decimal.Decimal
}

// CheckoutService converts carts into persisted orders
type CheckoutService struct {
	scope     CheckoutTransactionScope
	cartStore cart.Store
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. eventBus may be nil.
func NewCheckoutService(scope CheckoutTransactionScope, cartStore cart.Store, eventBus shared.EventPublisher, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		scope:     scope,
		cartStore: cartStore,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// CheckoutWhatsApp places an order from the session cart and clears the cart
// once the order has committed.
func (s *CheckoutService) CheckoutWhatsApp(ctx context.Context, sessionID string, userID *uuid.UUID, req WhatsAppCheckoutRequest) (*CheckoutResult, error) {
	c, err := s.cartStore.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o, err := s.place(ctx, placement{
		lines:         c.Lines,
		customerName:  req.Customer.Name,
		customerPhone: req.Customer.Phone,
		userID:        userID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartStore.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	return &CheckoutResult{
		OrderID: o.ID,
		Message: o.WhatsAppMessage,
		Order:   ToOrderResponse(o),
	}, nil
}

// CreateOrder places an order from an explicit item list. When the client
// states a total that disagrees with live prices the order is refused.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID *uuid.UUID, req CreateOrderRequest) (*CheckoutResult, error) {
	if len(req.CartItems) == 0 {
		return nil, shared.NewDomainError(order.CodeEmptyOrder, "cart_items must be a non-empty list")
	}

	lines := make([]cart.Line, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		if item.Quantity < 1 {
			return nil, shared.InvalidInput("Item quantity must be positive")
		}
		lines = append(lines, cart.Line{ProductID: item.ID, Quantity: item.Quantity})
	}

	o, err := s.place(ctx, placement{
		lines:         lines,
		customerName:  req.CustomerName,
		userID:        userID,
		message:       req.WhatsAppMessage,
		expectedTotal: req.TotalPrice,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID: o.ID,
		Message: "Order created successfully via WhatsApp checkout",
		Order:   ToOrderResponse(o),
	}, nil
}

// place reserves stock for every line and inserts the order in one
// transaction, then publishes the order's events.
func (s *CheckoutService) place(ctx context.Context, p placement) (*order.Order, error) {
	var placed *order.Order
	err := s.scope.Execute(ctx, func(repos CheckoutRepositories) error {
		items := make([]order.LineItem, 0, len(p.lines))
		for _, line := range p.lines {
			item, err := reserve(ctx, repos.ProductRepo(), line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		o, err := order.NewOrder(p.customerName, p.userID, items)
		if err != nil {
			return err
		}
		if p.expectedTotal != nil && !p.expectedTotal.Equal(o.TotalAmount) {
			return shared.NewDomainError(order.CodeTotalMismatch,
				fmt.Sprintf("Submitted total %s does not match current total %s", p.expectedTotal.String(), o.Total().Display()))
		}
		o.SetPhone(p.customerPhone)
		if p.message != nil && *p.message != "" {
			o.SetMessagePreview(*p.message)
		} else {
			o.SetMessagePreview(order.BuildMessage(items, o.CustomerName))
		}

		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.Int("items", placed.ItemCount()),
		zap.String("total", placed.TotalAmount.String()))

	events := placed.GetDomainEvents()
	placed.ClearDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}
	return placed, nil
}

// reserve checks a product is sellable, takes quantity units off its stock
// and snapshots it at the current price.
func reserve(ctx context.Context, products catalog.ProductRepository, line cart.Line) (order.LineItem, error) {
	product, err := products.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return order.LineItem{}, ErrProductNotFound
		}
		return order.LineItem{}, err
	}
	if !product.IsActive {
		return order.LineItem{}, catalog.ErrProductInactive
	}
	if err := products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			return order.LineItem{}, shared.NewDomainError(shared.ErrInsufficientStock.Code,
				fmt.Sprintf("Insufficient stock for %s", product.Name))
		}
		return order.LineItem{}, err
	}
	return order.NewLineItem(product.ID, product.Name, line.Quantity, product.Price), nil
}
