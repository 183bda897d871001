package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogReader serves the public storefront catalog
type CatalogReader interface {
	List(ctx context.Context, req catalog.ProductListFilter) (*catalog.ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*catalog.ProductDetailResponse, error)
	Categories(ctx context.Context) ([]catalog.CategoryResponse, error)
}

// ReviewWriter records customer reviews
type ReviewWriter interface {
	AddReview(ctx context.Context, productID uuid.UUID, req catalog.AddReviewRequest) (*catalog.ReviewResponse, error)
}

// CatalogHandler handles the public product endpoints
type CatalogHandler struct {
	BaseHandler
	products CatalogReader
	reviews  ReviewWriter
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(products CatalogReader, reviews ReviewWriter) *CatalogHandler {
	return &CatalogHandler{products: products, reviews: reviews}
}

// ListProducts lists active products.
//
//	GET /api/v1/products?category&search&sort&page&per_page
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalog.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page, page.Total, page.Page, page.PerPage)
}

// GetProduct returns an active product with its reviews.
//
//	GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Categories lists categories with their active product counts.
//
//	GET /api/v1/products/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// AddReview posts a review and returns it with 201.
//
//	POST /api/v1/products/:id/reviews
func (h *CatalogHandler) AddReview(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req catalog.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}
