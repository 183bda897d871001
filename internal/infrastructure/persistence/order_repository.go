package persistence

import (
	"context"
	"strings"

	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders matching the filter. A zero PageSize returns every row.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderSort.orderBy(filter.OrderBy, filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error
}

// Save updates an existing order with optimistic locking
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	if err := saveVersioned(ctx, r.db, model, model.ID, &model.Version); err != nil {
		return err
	}
	o.Version = model.Version
	return nil
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if strings.TrimSpace(filter.Search) != "" {
		query = query.Where(`LOWER(customer_name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case order.FilterStatus:
			query = query.Where("status = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
