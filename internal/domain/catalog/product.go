package catalog

import (
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which an active product is low on stock
const LowStockThreshold = 10

// Product represents a sellable item in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name             string
	Description      string
	ShortDescription string
	Category         Category
	Price            decimal.Decimal
	OriginalPrice    *decimal.Decimal // list price shown struck through when discounted
	Rating           float64
	ReviewsCount     int
	StockQuantity    int
	IsActive         bool
	Badge            string
	ImageURL         string
	Specifications   map[string]string
	Features         []string
}

// NewProduct creates a new active product
func NewProduct(name string, category Category, price decimal.Decimal, stock int) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, invalidCategoryError(string(category))
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Category:          category,
		Price:             price,
		StockQuantity:     stock,
		IsActive:          true,
		Specifications:    map[string]string{},
		Features:          []string{},
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Rename updates the product name
func (p *Product) Rename(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.touch()
	return nil
}

// SetDescriptions updates the long and short descriptions
func (p *Product) SetDescriptions(description, short string) error {
	if len(short) > 500 {
		return shared.InvalidInput("Short description cannot exceed 500 characters")
	}
	p.Description = description
	p.ShortDescription = short
	p.touch()
	return nil
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(category Category) error {
	if !category.IsValid() {
		return invalidCategoryError(string(category))
	}
	p.Category = category
	p.touch()
	return nil
}

// SetPrice sets the selling price and the optional original price
func (p *Product) SetPrice(price decimal.Decimal, original *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if original != nil {
		if err := validatePrice(*original); err != nil {
			return err
		}
	}
	p.Price = price
	p.OriginalPrice = original
	p.touch()
	return nil
}

// SetStock sets the on-hand quantity
func (p *Product) SetStock(quantity int) error {
	if err := validateStock(quantity); err != nil {
		return err
	}
	p.StockQuantity = quantity
	p.touch()
	return nil
}

// SetPresentation updates badge and image
func (p *Product) SetPresentation(badge, imageURL string) {
	p.Badge = badge
	p.ImageURL = imageURL
	p.touch()
}

// SetSpecifications replaces the specification map
func (p *Product) SetSpecifications(specs map[string]string) {
	if specs == nil {
		specs = map[string]string{}
	}
	p.Specifications = specs
	p.touch()
}

// SetFeatures replaces the ordered features list
func (p *Product) SetFeatures(features []string) {
	if features == nil {
		features = []string{}
	}
	p.Features = features
	p.touch()
}

// Activate makes the product visible in the public catalog again
func (p *Product) Activate() {
	if p.IsActive {
		return
	}
	p.IsActive = true
	p.touch()
}

// Deactivate soft-deletes the product
func (p *Product) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.touch()
	p.AddDomainEvent(NewProductDeactivatedEvent(p))
}

// InStock reports whether any unit is on hand
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// IsLowStock reports whether the product should raise a low-stock alert
func (p *Product) IsLowStock() bool {
	return p.IsActive && p.StockQuantity < LowStockThreshold
}

// CanFulfil reports whether quantity units can be sold right now
func (p *Product) CanFulfil(quantity int) bool {
	return p.IsActive && quantity > 0 && quantity <= p.StockQuantity
}

// ApplyReviewSummary stores the recomputed rating aggregate
func (p *Product) ApplyReviewSummary(summary ReviewSummary) {
	p.Rating = summary.Mean
	p.ReviewsCount = summary.Count
	p.touch()
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
}

func validateProductName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.InvalidInput("Product name cannot be empty")
	}
	if len(trimmed) > 200 {
		return shared.InvalidInput("Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError(CodeInvalidPrice, "Price cannot be negative")
	}
	return nil
}

func validateStock(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError(CodeInvalidStock, "Stock quantity cannot be negative")
	}
	return nil
}

// ProductIDs extracts ids preserving order
func ProductIDs(products []Product) []uuid.UUID {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return ids
}
