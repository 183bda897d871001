package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalshop/backend/internal/domain/cart"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrProductNotFound is returned when the requested product does not exist
var ErrProductNotFound = shared.NotFound("Product not found")

// CartService manages session carts against live catalog stock
type CartService struct {
	store       cart.Store
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(store cart.Store, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{store: store, productRepo: productRepo, logger: logger}
}

// View prices the cart with live product data. Lines whose product vanished
// or was deactivated are left out of the view but kept in storage.
func (s *CartService) View(ctx context.Context, sessionID string) (*Response, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Add increments a product's quantity after checking live stock
func (s *CartService) Add(ctx context.Context, sessionID string, req AddItemRequest) (*Response, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, shared.InvalidInput("Quantity must be at least 1")
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.sellable(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(product, c.QuantityOf(product.ID)+quantity); err != nil {
		return nil, err
	}

	if err := c.Add(product.ID, quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Update sets an absolute quantity; zero removes the line
func (s *CartService) Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*Response, error) {
	if quantity < 0 {
		return nil, shared.InvalidInput("Quantity cannot be negative")
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.QuantityOf(productID) == 0 {
		return nil, cart.ErrLineNotFound
	}

	if quantity > 0 {
		product, err := s.sellable(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := checkStock(product, quantity); err != nil {
			return nil, err
		}
	}

	if err := c.Update(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Remove drops a product from the cart; absent products are ignored
func (s *CartService) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*Response, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *CartService) sellable(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, catalog.ErrProductInactive
	}
	return product, nil
}

func checkStock(product *catalog.Product, requested int) error {
	if product.CanFulfil(requested) {
		return nil
	}
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Only %d unit(s) of %s available", product.StockQuantity, product.Name))
}

func (s *CartService) price(ctx context.Context, c *cart.Cart) (*Response, error) {
	resp := &Response{
		SessionID:  c.SessionID,
		Items:      []ItemResponse{},
		TotalPrice: decimal.Zero,
	}
	if c.IsEmpty() {
		return resp, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, line := range c.Lines {
		p, ok := byID[line.ProductID]
		if !ok || !p.IsActive {
			s.logger.Debug("Skipping unavailable cart line",
				zap.String("session_id", c.SessionID),
				zap.String("product_id", line.ProductID.String()))
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		resp.Items = append(resp.Items, ItemResponse{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			ImageURL:      p.ImageURL,
			Quantity:      line.Quantity,
			Subtotal:      subtotal,
			StockQuantity: p.StockQuantity,
		})
		resp.TotalItems += line.Quantity
		resp.TotalPrice = resp.TotalPrice.Add(subtotal)
	}
	return resp, nil
}
