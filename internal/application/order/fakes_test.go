package order

import (
	"context"
	"sync"

	"github.com/dentalshop/backend/internal/domain/cart"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// shop is an in-memory product and order store whose Execute restores the
// previous state when the callback fails, like a rolled back transaction.
type shop struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	orders   []*order.Order
	failNext error
}

func newShop(products ...*catalog.Product) *shop {
	s := &shop{products: map[uuid.UUID]*catalog.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *shop) Execute(_ context.Context, fn func(repos CheckoutRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock := make(map[uuid.UUID]int, len(s.products))
	for id, p := range s.products {
		stock[id] = p.StockQuantity
	}
	orders := len(s.orders)

	if err := fn(s); err != nil {
		for id, qty := range stock {
			s.products[id].StockQuantity = qty
		}
		s.orders = s.orders[:orders]
		return err
	}
	return nil
}

func (s *shop) ProductRepo() catalog.ProductRepository { return shopProducts{s} }
func (s *shop) OrderRepo() order.OrderRepository       { return shopOrders{s} }

type shopProducts struct{ s *shop }

func (r shopProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r shopProducts) FindByIDs(context.Context, []uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}

func (r shopProducts) FindAll(context.Context, shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r shopProducts) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }

func (r shopProducts) FindLowStock(context.Context, int) ([]catalog.Product, error) {
	return nil, nil
}

func (r shopProducts) CountActiveByCategory(context.Context) ([]catalog.CategoryCount, error) {
	return nil, nil
}

func (r shopProducts) Save(context.Context, *catalog.Product) error { return nil }

func (r shopProducts) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := r.s.products[id]
	if !ok || !p.IsActive || p.StockQuantity < quantity {
		return shared.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	return nil
}

type shopOrders struct{ s *shop }

func (r shopOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	for _, o := range r.s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r shopOrders) FindAll(context.Context, shared.Filter) ([]order.Order, error) {
	out := make([]order.Order, len(r.s.orders))
	for i, o := range r.s.orders {
		out[i] = *o
	}
	return out, nil
}

func (r shopOrders) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.s.orders)), nil
}

func (r shopOrders) Create(_ context.Context, o *order.Order) error {
	if r.s.failNext != nil {
		err := r.s.failNext
		r.s.failNext = nil
		return err
	}
	r.s.orders = append(r.s.orders, o)
	return nil
}

func (r shopOrders) Save(context.Context, *order.Order) error { return nil }

type memoryCarts struct {
	carts map[string]*cart.Cart
}

func (m *memoryCarts) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	if c, ok := m.carts[sessionID]; ok {
		return c, nil
	}
	return cart.New(sessionID), nil
}

func (m *memoryCarts) Save(_ context.Context, c *cart.Cart) error {
	m.carts[c.SessionID] = c
	return nil
}

func (m *memoryCarts) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func newProduct(name, price string, stock int) *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		Name:              name,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		IsActive:          true,
	}
}
