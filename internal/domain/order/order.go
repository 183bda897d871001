package order

import (
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by the order context
const (
	CodeInvalidStatus = "INVALID_STATUS"
	CodeEmptyOrder    = "INVALID_EMPTY_ORDER"
	CodeTotalMismatch = "INVALID_TOTAL"
)

// LineItem is the point-in-time snapshot of one purchased product
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewLineItem snapshots a product at its current price
func NewLineItem(productID uuid.UUID, name string, quantity int, price decimal.Decimal) LineItem {
	return LineItem{
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Order is a placed purchase; items and total never change after creation
type Order struct {
	shared.BaseAggregateRoot
	UserID          *uuid.UUID
	CustomerName    string
	CustomerPhone   string
	Items           []LineItem
	TotalAmount     decimal.Decimal
	Currency        valueobject.Currency
	Status          Status
	WhatsAppMessage string
}

// NewOrder creates a pending order from snapshotted line items
func NewOrder(customerName string, userID *uuid.UUID, items []LineItem) (*Order, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, shared.InvalidInput("Customer name is required")
	}
	if len(name) > 150 {
		return nil, shared.InvalidInput("Customer name cannot exceed 150 characters")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(CodeEmptyOrder, "Order must contain at least one item")
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.InvalidInput("Item quantity must be positive")
		}
		total = total.Add(item.Subtotal)
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		CustomerName:      name,
		Items:             items,
		TotalAmount:       total,
		Currency:          valueobject.DefaultCurrency,
		Status:            StatusPending,
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// Total returns the order total as Money
func (o *Order) Total() valueobject.Money {
	return valueobject.NewMoneyMAD(o.TotalAmount)
}

// ItemCount sums quantities across lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// SetPhone records an optional contact phone
func (o *Order) SetPhone(phone string) {
	o.CustomerPhone = strings.TrimSpace(phone)
}

// SetMessagePreview stores the rendered checkout message
func (o *Order) SetMessagePreview(message string) {
	o.WhatsAppMessage = message
}

// ChangeStatus sets a new status; any valid label is accepted
func (o *Order) ChangeStatus(status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if o.Status == status {
		return nil
	}
	old := o.Status
	o.Status = status
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}
