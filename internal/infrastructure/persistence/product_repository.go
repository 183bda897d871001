package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, active or not
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindLowStock finds active products whose stock is strictly below threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id", "name", "stock_quantity", "is_active").
		Where("is_active = ? AND stock_quantity < ?", true, threshold).
		Order("stock_quantity ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// CountActiveByCategory counts active products per category
func (r *GormProductRepository) CountActiveByCategory(ctx context.Context) ([]catalog.CategoryCount, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("category, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make([]catalog.CategoryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, catalog.CategoryCount{
			Category: catalog.Category(row.Category),
			Count:    row.Count,
		})
	}
	return counts, nil
}

// Save creates or updates a product. Updates fail with ErrConcurrencyConflict
// when the row changed since it was loaded.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := saveVersioned(ctx, r.db, model, model.ID, &model.Version); err != nil {
		return err
	}
	product.Version = model.Version
	return nil
}

// DecrementStock removes quantity units in a single conditional UPDATE so two
// concurrent checkouts can never both take the last unit.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.InvalidInput("Quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND is_active = ? AND stock_quantity >= ?", id, true, quantity).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query.Order(productSort.orderBy(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(short_description) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterCategory:
			query = query.Where("category = ?", value)
		case catalog.FilterIsActive:
			query = query.Where("is_active = ?", value)
		case "min_price":
			query = query.Where("price >= ?", value)
		case "max_price":
			query = query.Where("price <= ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("stock_quantity > 0")
			} else {
				query = query.Where("stock_quantity = 0")
			}
		}
	}

	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
