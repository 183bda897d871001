package cart

import (
	"context"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Line is one product and the quantity requested
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is the per-session list of requested products.
// Prices are never stored; they are read live when the cart is viewed.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for a session
func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []Line{}}
}

// ErrLineNotFound is returned when updating a product absent from the cart
var ErrLineNotFound = shared.NotFound("Item not in cart")

// QuantityOf returns the quantity already requested for a product
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Add increments the quantity of a product, appending a line when new
func (c *Cart) Add(productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.InvalidInput("Quantity must be at least 1")
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			c.touch()
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
	c.touch()
	return nil
}

// Update sets an absolute quantity; zero removes the line
func (c *Cart) Update(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return shared.InvalidInput("Quantity cannot be negative")
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity == 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
		}
		c.touch()
		return nil
	}
	return ErrLineNotFound
}

// Remove drops a product; removing an absent product is not an error
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ProductIDs returns the ids of every line in order
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

// Store persists carts keyed by session id
type Store interface {
	// Load returns the session's cart, or an empty cart when none is stored
	Load(ctx context.Context, sessionID string) (*Cart, error)
	// Save stores the cart and refreshes its expiry
	Save(ctx context.Context, c *Cart) error
	// Delete forgets the session's cart
	Delete(ctx context.Context, sessionID string) error
}
