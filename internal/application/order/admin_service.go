package order

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when an order does not exist
var ErrOrderNotFound = shared.NotFound("Order not found")

// CSVTimeLayout formats timestamps in order exports
const CSVTimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{
	"ID", "Customer Name", "User ID", "Status", "Total Amount (MAD)",
	"Items", "WhatsApp Message Preview", "Created At", "Updated At",
}

// AdminOrderService handles order management for administrators
type AdminOrderService struct {
	orderRepo order.OrderRepository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewAdminOrderService creates a new AdminOrderService
func NewAdminOrderService(orderRepo order.OrderRepository, eventBus shared.EventPublisher, logger *zap.Logger) *AdminOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminOrderService{orderRepo: orderRepo, eventBus: eventBus, logger: logger}
}

// List returns one page of orders, newest first
func (s *AdminOrderService) List(ctx context.Context, req OrderListFilter) (*OrderPage, error) {
	page, perPage := req.Page, req.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: perPage,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(req.Search),
		Filters:  map[string]interface{}{},
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := order.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Filters[order.FilterStatus] = parsed
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paged := shared.NewPaginated(ToOrderResponses(orders), total, page, perPage)
	return &OrderPage{
		Orders:     paged.Items,
		Total:      paged.Total,
		Page:       paged.Page,
		PerPage:    paged.PageSize,
		TotalPages: paged.TotalPages,
	}, nil
}

// Get returns one order by id
func (s *AdminOrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateStatus moves an order to any known status label
func (s *AdminOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))

	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// ExportCSV writes every order, newest first, as CSV
func (s *AdminOrderService) ExportCSV(ctx context.Context, w io.Writer) error {
	orders, err := s.orderRepo.FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "desc"})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range orders {
		if err := cw.Write(csvRow(&orders[i])); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(o *order.Order) []string {
	userID := "N/A"
	if o.UserID != nil {
		userID = o.UserID.String()
	}
	return []string{
		o.ID.String(),
		o.CustomerName,
		userID,
		o.Status.String(),
		o.TotalAmount.String(),
		itemsSummary(o.Items),
		o.WhatsAppMessage,
		csvTime(o.CreatedAt),
		csvTime(o.UpdatedAt),
	}
}

func itemsSummary(items []order.LineItem) string {
	if len(items) == 0 {
		return "No items listed"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s (Qty: %d, Price: %s MAD)", item.Name, item.Quantity, item.Price.String())
	}
	return strings.Join(parts, "; ")
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CSVTimeLayout)
}

func (s *AdminOrderService) find(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}
