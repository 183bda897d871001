package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/cart"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartManager is the session cart use case
type CartManager interface {
	View(ctx context.Context, sessionID string) (*cart.Response, error)
	Add(ctx context.Context, sessionID string, req cart.AddItemRequest) (*cart.Response, error)
	Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.Response, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*cart.Response, error)
	Clear(ctx context.Context, sessionID string) error
}

// UpdateCartRequest sets the quantity of one cart line; 0 removes it
type UpdateCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"required,min=0"`
}

// CartHandler handles the session cart. Routes must run behind
// middleware.CartSession.
type CartHandler struct {
	BaseHandler
	carts CartManager
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts CartManager) *CartHandler {
	return &CartHandler{carts: carts}
}

// View returns the priced cart.
//
//	GET /api/v1/cart
func (h *CartHandler) View(c *gin.Context) {
	resp, err := h.carts.View(c.Request.Context(), middleware.GetCartSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Add puts a product in the cart.
//
//	POST /api/v1/cart/add {product_id, quantity?}
func (h *CartHandler) Add(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.carts.Add(c.Request.Context(), middleware.GetCartSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update changes a line quantity.
//
//	PUT /api/v1/cart/update {product_id, quantity}
func (h *CartHandler) Update(c *gin.Context) {
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.carts.Update(c.Request.Context(), middleware.GetCartSessionID(c), req.ProductID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Remove drops a line.
//
//	DELETE /api/v1/cart/remove/:product_id
func (h *CartHandler) Remove(c *gin.Context) {
	productID, ok := h.parseID(c, "product_id")
	if !ok {
		return
	}

	resp, err := h.carts.Remove(c.Request.Context(), middleware.GetCartSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear empties the cart.
//
//	DELETE /api/v1/cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.GetCartSessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart cleared")
}
