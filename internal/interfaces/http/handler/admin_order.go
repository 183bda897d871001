package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderAdmin is the admin side of orders
type OrderAdmin interface {
	List(ctx context.Context, req order.OrderListFilter) (*order.OrderPage, error)
	Get(ctx context.Context, id uuid.UUID) (*order.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req order.UpdateStatusRequest) (*order.OrderResponse, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// SlipPrinter renders the printable slip of an order
type SlipPrinter interface {
	Print(ctx context.Context, o *order.OrderResponse) ([]byte, error)
}

// ExportFilename is the attachment name of the order export
const ExportFilename = "orders_export.csv"

// AdminOrderHandler handles order management
type AdminOrderHandler struct {
	BaseHandler
	orders OrderAdmin
	slips  SlipPrinter
}

// NewAdminOrderHandler creates a new admin order handler. slips may be nil
// when printing is disabled.
func NewAdminOrderHandler(orders OrderAdmin, slips SlipPrinter) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, slips: slips}
}

// List returns orders newest first.
//
//	GET /api/v1/admin/orders?page&per_page&status&search
func (h *AdminOrderHandler) List(c *gin.Context) {
	var filter order.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Orders, page.Total, page.Page, page.PerPage)
}

// Get returns one order.
//
//	GET /api/v1/admin/orders/:id
func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus moves an order to another status.
//
//	PUT /api/v1/admin/orders/:id/status {status}
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// ExportCSV streams every order as a CSV attachment. Once rows have been
// written a failure can only be logged.
//
//	GET /api/v1/admin/orders/export_csv
func (h *AdminOrderHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename="+ExportFilename)

	w := &trackingWriter{w: c.Writer}
	if err := h.orders.ExportCSV(c.Request.Context(), w); err != nil {
		if !w.written {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			h.HandleError(c, err)
			return
		}
		logger.L(c.Request.Context()).Error("Order export interrupted", zap.Error(err))
	}
}

// Slip returns the order as a printable PDF.
//
//	GET /api/v1/admin/orders/:id/slip.pdf
func (h *AdminOrderHandler) Slip(c *gin.Context) {
	if h.slips == nil {
		h.NotFound(c, "Order slips are not enabled")
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pdf, err := h.slips.Print(c.Request.Context(), o)
	if err != nil {
		logger.L(c.Request.Context()).Error("Order slip failed", zap.Error(err), zap.Stringer("order_id", id))
		h.InternalError(c, "Failed to print order slip")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline;filename=order-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type trackingWriter struct {
	w       io.Writer
	written bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.written = true
	return t.w.Write(p)
}
