package persistence

import (
	"context"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create stores a new review
func (r *GormReviewRepository) Create(ctx context.Context, review *catalog.Review) error {
	return r.db.WithContext(ctx).Create(models.ReviewModelFromDomain(review)).Error
}

// FindByProduct lists a product's reviews newest first
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Review, error) {
	var rows []models.ReviewModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	reviews := make([]catalog.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, *rows[i].ToDomain())
	}
	return reviews, nil
}

// SummaryForProduct aggregates ratings in the database
func (r *GormReviewRepository) SummaryForProduct(ctx context.Context, productID uuid.UUID) (catalog.ReviewSummary, error) {
	var totals struct {
		Total int64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&totals).Error; err != nil {
		return catalog.ReviewSummary{}, err
	}
	return catalog.SummaryFromTotals(totals.Total, totals.Count), nil
}

// Ensure GormReviewRepository implements ReviewRepository
var _ catalog.ReviewRepository = (*GormReviewRepository)(nil)
