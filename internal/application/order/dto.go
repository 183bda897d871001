package order

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Paging defaults for admin order listings
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// OrderListFilter represents filter options for the admin order list
type OrderListFilter struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// UpdateStatusRequest represents a request to change an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// LineItemResponse represents one snapshotted order line
type LineItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                     uuid.UUID          `json:"id"`
	UserID                 *uuid.UUID         `json:"user_id,omitempty"`
	CustomerName           string             `json:"customer_name"`
	CustomerPhone          string             `json:"customer_phone,omitempty"`
	Items                  []LineItemResponse `json:"items"`
	TotalAmount            decimal.Decimal    `json:"total_amount"`
	Currency               string             `json:"currency"`
	Status                 string             `json:"status"`
	WhatsAppMessagePreview string             `json:"whatsapp_message_preview"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// OrderPage is one page of the admin order list
type OrderPage struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
		}
	}
	return OrderResponse{
		ID:                     o.ID,
		UserID:                 o.UserID,
		CustomerName:           o.CustomerName,
		CustomerPhone:          o.CustomerPhone,
		Items:                  items,
		TotalAmount:            o.TotalAmount,
		Currency:               string(o.Currency),
		Status:                 o.Status.String(),
		WhatsAppMessagePreview: o.WhatsAppMessage,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// CustomerInfo identifies who placed a WhatsApp checkout
type CustomerInfo struct {
	Name  string `json:"name" binding:"required,max=150"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// WhatsAppCheckoutRequest places an order from the session cart
type WhatsAppCheckoutRequest struct {
	Customer CustomerInfo `json:"customer" binding:"required"`
}

// CartItemInput is one line of a storefront-submitted cart. Name and price
// are accepted for compatibility but the server's live values win.
type CartItemInput struct {
	ID       uuid.UUID        `json:"id" binding:"required"`
	Quantity int              `json:"quantity" binding:"required,min=1"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
}

// CreateOrderRequest places an order from an explicit item list
type CreateOrderRequest struct {
	CartItems       []CartItemInput  `json:"cart_items" binding:"required,min=1,dive"`
	CustomerName    string           `json:"customer_name" binding:"required,max=150"`
	TotalPrice      *decimal.Decimal `json:"total_price"`
	WhatsAppMessage *string          `json:"whatsapp_message"`
}

// CheckoutResult is returned after an order commits
type CheckoutResult struct {
	OrderID uuid.UUID     `json:"order_id"`
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}
