package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Checkout turns a cart into an order
type Checkout interface {
	CheckoutWhatsApp(ctx context.Context, sessionID string, userID *uuid.UUID, req order.WhatsAppCheckoutRequest) (*order.CheckoutResult, error)
	CreateOrder(ctx context.Context, userID *uuid.UUID, req order.CreateOrderRequest) (*order.CheckoutResult, error)
}

// CheckoutHandler handles order placement. Both routes accept an optional
// bearer token; a valid one links the order to the caller.
type CheckoutHandler struct {
	BaseHandler
	checkout Checkout
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout Checkout) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// WhatsApp places an order from the session cart.
//
//	POST /api/v1/checkout/whatsapp {customer:{name, phone?}}
func (h *CheckoutHandler) WhatsApp(c *gin.Context) {
	var req order.WhatsAppCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.checkout.CheckoutWhatsApp(c.Request.Context(),
		middleware.GetCartSessionID(c), middleware.GetJWTUserUUID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CreateOrder places an order from client-held cart lines.
//
//	POST /api/v1/orders
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.checkout.CreateOrder(c.Request.Context(), middleware.GetJWTUserUUID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
