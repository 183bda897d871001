package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductAdmin is the admin side of the catalog
type ProductAdmin interface {
	AdminList(ctx context.Context, req catalog.AdminProductListFilter) ([]catalog.ProductResponse, int64, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*catalog.ProductResponse, error)
	Create(ctx context.Context, req catalog.CreateProductRequest) (*catalog.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalog.UpdateProductRequest) (*catalog.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdminProductHandler handles product management
type AdminProductHandler struct {
	BaseHandler
	products ProductAdmin
}

// NewAdminProductHandler creates a new admin product handler
func NewAdminProductHandler(products ProductAdmin) *AdminProductHandler {
	return &AdminProductHandler{products: products}
}

// List returns products including inactive ones.
//
//	GET /api/v1/admin/products?page&per_page&sort_by&sort_order&search&category&is_active
func (h *AdminProductHandler) List(c *gin.Context) {
	var filter catalog.AdminProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	products, total, err := h.products.AdminList(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = catalog.DefaultPerPage
	}
	h.SuccessWithMeta(c, products, total, page, perPage)
}

// Get returns a product by id, active or not.
//
//	GET /api/v1/admin/products/:id
func (h *AdminProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product.
//
//	POST /api/v1/admin/products
func (h *AdminProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial update.
//
//	PUT /api/v1/admin/products/:id
func (h *AdminProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete hides a product from the storefront.
//
//	DELETE /api/v1/admin/products/:id
func (h *AdminProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product deactivated")
}
