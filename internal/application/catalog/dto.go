package catalog

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Public listing sort keys
const (
	SortName      = "name"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// Pagination bounds
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ProductListFilter holds the public catalog query
type ProductListFilter struct {
	Category string `form:"category"`
	Search   string `form:"search" binding:"max=100"`
	Sort     string `form:"sort"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// AdminProductListFilter holds the admin product table query
type AdminProductListFilter struct {
	Search    string `form:"search" binding:"max=100"`
	Category  string `form:"category"`
	IsActive  *bool  `form:"is_active"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name             string            `json:"name" binding:"required,min=1,max=200"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description" binding:"max=500"`
	Category         string            `json:"category" binding:"required"`
	Price            *decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice    *decimal.Decimal  `json:"original_price"`
	StockQuantity    *int              `json:"stock_quantity" binding:"required,min=0"`
	IsActive         *bool             `json:"is_active"`
	Badge            string            `json:"badge" binding:"max=50"`
	ImageURL         string            `json:"image_url" binding:"max=500"`
	Specifications   map[string]string `json:"specifications"`
	Features         []string          `json:"features"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched
type UpdateProductRequest struct {
	Name             *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description      *string            `json:"description"`
	ShortDescription *string            `json:"short_description" binding:"omitempty,max=500"`
	Category         *string            `json:"category"`
	Price            *decimal.Decimal   `json:"price"`
	OriginalPrice    *decimal.Decimal   `json:"original_price"`
	ClearOriginal    bool               `json:"clear_original_price"`
	StockQuantity    *int               `json:"stock_quantity" binding:"omitempty,min=0"`
	IsActive         *bool              `json:"is_active"`
	Badge            *string            `json:"badge" binding:"omitempty,max=50"`
	ImageURL         *string            `json:"image_url" binding:"omitempty,max=500"`
	Specifications   *map[string]string `json:"specifications"`
	Features         *[]string          `json:"features"`
}

// AddReviewRequest is the public review form
type AddReviewRequest struct {
	AuthorName string `json:"author_name" binding:"required,max=100"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description"`
	Category         string            `json:"category"`
	CategoryName     string            `json:"category_name"`
	Price            decimal.Decimal   `json:"price"`
	OriginalPrice    *decimal.Decimal  `json:"original_price"`
	Rating           float64           `json:"rating"`
	ReviewsCount     int               `json:"reviews_count"`
	StockQuantity    int               `json:"stock_quantity"`
	InStock          bool              `json:"in_stock"`
	IsActive         bool              `json:"is_active"`
	Badge            string            `json:"badge,omitempty"`
	ImageURL         string            `json:"image_url,omitempty"`
	Specifications   map[string]string `json:"specifications"`
	Features         []string          `json:"features"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductDetailResponse is a product with its reviews, newest first
type ProductDetailResponse struct {
	ProductResponse
	Reviews []ReviewResponse `json:"reviews"`
}

// ProductPage is one page of the public listing
type ProductPage struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalPages int               `json:"total_pages"`
	HasNext    bool              `json:"has_next"`
	HasPrev    bool              `json:"has_prev"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryResponse is one entry of the category menu
type CategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Category:         string(p.Category),
		CategoryName:     p.Category.DisplayName(),
		Price:            p.Price,
		OriginalPrice:    p.OriginalPrice,
		Rating:           p.Rating,
		ReviewsCount:     p.ReviewsCount,
		StockQuantity:    p.StockQuantity,
		InStock:          p.InStock(),
		IsActive:         p.IsActive,
		Badge:            p.Badge,
		ImageURL:         p.ImageURL,
		Specifications:   specs,
		Features:         features,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// ToReviewResponse converts a domain Review to ReviewResponse
func ToReviewResponse(r *catalog.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsVerified: r.IsVerified,
		CreatedAt:  r.CreatedAt,
	}
}
