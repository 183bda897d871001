package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateItemRequest sets an absolute quantity; zero removes the line
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// ItemResponse is one cart line enriched with live product data
type ItemResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url,omitempty"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	StockQuantity int             `json:"stock_quantity"`
}

// Response is the priced view of a session cart
type Response struct {
	SessionID  string          `json:"session_id"`
	Items      []ItemResponse  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
