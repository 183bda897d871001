package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrProductNotFound is returned for missing products and, on public routes, inactive ones
var ErrProductNotFound = shared.NotFound("Product not found")

// CategoryCache memoizes the category menu counts
type CategoryCache interface {
	GetOrLoad(ctx context.Context, load func(context.Context) ([]catalog.CategoryCount, error)) ([]catalog.CategoryCount, error)
	Invalidate(ctx context.Context)
}

// ProductService handles catalog queries and admin product management
type ProductService struct {
	productRepo catalog.ProductRepository
	reviewRepo  catalog.ReviewRepository
	cache       CategoryCache
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. cache and eventBus may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	reviewRepo catalog.ReviewRepository,
	cache CategoryCache,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// List returns one page of active products
func (s *ProductService) List(ctx context.Context, req ProductListFilter) (*ProductPage, error) {
	page, perPage := normalizePage(req.Page, req.PerPage)
	orderBy, orderDir := publicSort(req.Sort)

	filter := shared.Filter{
		Page:     page,
		PageSize: perPage,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   strings.TrimSpace(req.Search),
		Filters:  map[string]interface{}{catalog.FilterIsActive: true},
	}
	if category := strings.TrimSpace(req.Category); category != "" && category != catalog.CategoryAll {
		filter.Filters[catalog.FilterCategory] = category
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paged := shared.NewPaginated(ToProductResponses(products), total, page, perPage)
	return &ProductPage{
		Products:   paged.Items,
		Total:      paged.Total,
		Page:       paged.Page,
		PerPage:    paged.PageSize,
		TotalPages: paged.TotalPages,
		HasNext:    paged.HasNext(),
		HasPrev:    paged.HasPrev(),
	}, nil
}

// Get returns an active product with its reviews
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductDetailResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ToReviewResponse(&reviews[i])
	}

	return &ProductDetailResponse{
		ProductResponse: ToProductResponse(product),
		Reviews:         out,
	}, nil
}

// Categories returns the "all" entry followed by every category with active products
func (s *ProductService) Categories(ctx context.Context) ([]CategoryResponse, error) {
	var (
		counts []catalog.CategoryCount
		err    error
	)
	if s.cache != nil {
		counts, err = s.cache.GetOrLoad(ctx, s.productRepo.CountActiveByCategory)
	} else {
		counts, err = s.productRepo.CountActiveByCategory(ctx)
	}
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}

	result := make([]CategoryResponse, 0, len(counts)+1)
	result = append(result, CategoryResponse{ID: catalog.CategoryAll, Name: catalog.AllCategoriesLabel, Count: total})
	for _, c := range counts {
		result = append(result, CategoryResponse{
			ID:    string(c.Category),
			Name:  c.Category.DisplayName(),
			Count: c.Count,
		})
	}
	return result, nil
}

// AdminList lists products including inactive ones
func (s *ProductService) AdminList(ctx context.Context, req AdminProductListFilter) ([]ProductResponse, int64, error) {
	page, perPage := normalizePage(req.Page, req.PerPage)
	orderBy := req.SortBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := strings.ToLower(req.SortOrder)
	if orderDir == "" {
		orderDir = "asc"
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: perPage,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   strings.TrimSpace(req.Search),
		Filters:  map[string]interface{}{},
	}
	if req.IsActive != nil {
		filter.Filters[catalog.FilterIsActive] = *req.IsActive
	}
	if req.Category != "" && req.Category != catalog.CategoryAll {
		filter.Filters[catalog.FilterCategory] = req.Category
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// AdminGet returns a product by id, active or not
func (s *ProductService) AdminGet(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	if req.Price == nil || req.StockQuantity == nil {
		return nil, shared.InvalidInput("Price and stock quantity are required")
	}

	product, err := catalog.NewProduct(req.Name, category, *req.Price, *req.StockQuantity)
	if err != nil {
		return nil, err
	}
	if err := product.SetDescriptions(req.Description, req.ShortDescription); err != nil {
		return nil, err
	}
	if err := product.SetPrice(*req.Price, req.OriginalPrice); err != nil {
		return nil, err
	}
	product.SetPresentation(req.Badge, req.ImageURL)
	if req.Specifications != nil {
		product.SetSpecifications(req.Specifications)
	}
	if req.Features != nil {
		product.SetFeatures(req.Features)
	}
	if req.IsActive != nil && !*req.IsActive {
		product.Deactivate()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil || req.ShortDescription != nil {
		description, short := product.Description, product.ShortDescription
		if req.Description != nil {
			description = *req.Description
		}
		if req.ShortDescription != nil {
			short = *req.ShortDescription
		}
		if err := product.SetDescriptions(description, short); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		category, err := catalog.ParseCategory(*req.Category)
		if err != nil {
			return nil, err
		}
		if err := product.SetCategory(category); err != nil {
			return nil, err
		}
	}
	if req.Price != nil || req.OriginalPrice != nil || req.ClearOriginal {
		price, original := product.Price, product.OriginalPrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.OriginalPrice != nil {
			original = req.OriginalPrice
		}
		if req.ClearOriginal {
			original = nil
		}
		if err := product.SetPrice(price, original); err != nil {
			return nil, err
		}
	}
	if req.StockQuantity != nil {
		if err := product.SetStock(*req.StockQuantity); err != nil {
			return nil, err
		}
	}
	if req.Badge != nil || req.ImageURL != nil {
		badge, image := product.Badge, product.ImageURL
		if req.Badge != nil {
			badge = *req.Badge
		}
		if req.ImageURL != nil {
			image = *req.ImageURL
		}
		product.SetPresentation(badge, image)
	}
	if req.Specifications != nil {
		product.SetSpecifications(*req.Specifications)
	}
	if req.Features != nil {
		product.SetFeatures(*req.Features)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete soft-deletes a product by clearing its active flag
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	product.Deactivate()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	s.afterWrite(ctx, product)
	return nil
}

func (s *ProductService) afterWrite(ctx context.Context, product *catalog.Product) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	publishEvents(ctx, s.eventBus, s.logger, product)
}

func publishEvents(ctx context.Context, bus shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if bus == nil || len(events) == 0 {
		return
	}
	if err := bus.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func publicSort(sort string) (string, string) {
	switch sort {
	case SortPriceAsc:
		return "price", "asc"
	case SortPriceDesc:
		return "price", "desc"
	case SortRating:
		return "rating", "desc"
	default:
		return "name", "asc"
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
