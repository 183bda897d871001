package persistence

import (
	"context"
	"strings"

	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormArticleRepository implements content.ArticleRepository using GORM
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

func (r *GormArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Article, error) {
	var model models.ArticleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

func (r *GormArticleRepository) FindBySlug(ctx context.Context, slug string) (*content.Article, error) {
	var model models.ArticleModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists articles, newest publication first unless the filter says otherwise
func (r *GormArticleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.Article, error) {
	var rows []models.ArticleModel
	query := applyContentFilter(r.db.WithContext(ctx).Model(&models.ArticleModel{}), filter, true)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	articles := make([]content.Article, 0, len(rows))
	for i := range rows {
		articles = append(articles, *rows[i].ToDomain())
	}
	return articles, nil
}

func (r *GormArticleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyContentFilter(r.db.WithContext(ctx).Model(&models.ArticleModel{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsBySlug checks slug uniqueness, optionally ignoring one article
func (r *GormArticleRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return slugExists(ctx, r.db, &models.ArticleModel{}, slug, excludeID)
}

func (r *GormArticleRepository) Save(ctx context.Context, article *content.Article) error {
	model := models.ArticleModelFromDomain(article)
	if err := saveVersioned(ctx, r.db, model, model.ID, &model.Version); err != nil {
		return err
	}
	article.Version = model.Version
	return nil
}

func (r *GormArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.ArticleModel{}, id)
}

// GormCaseStudyRepository implements content.CaseStudyRepository using GORM
type GormCaseStudyRepository struct {
	db *gorm.DB
}

// NewGormCaseStudyRepository creates a new GormCaseStudyRepository
func NewGormCaseStudyRepository(db *gorm.DB) *GormCaseStudyRepository {
	return &GormCaseStudyRepository{db: db}
}

func (r *GormCaseStudyRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.CaseStudy, error) {
	var model models.CaseStudyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

func (r *GormCaseStudyRepository) FindBySlug(ctx context.Context, slug string) (*content.CaseStudy, error) {
	var model models.CaseStudyModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

func (r *GormCaseStudyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.CaseStudy, error) {
	var rows []models.CaseStudyModel
	query := applyContentFilter(r.db.WithContext(ctx).Model(&models.CaseStudyModel{}), filter, true)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	studies := make([]content.CaseStudy, 0, len(rows))
	for i := range rows {
		studies = append(studies, *rows[i].ToDomain())
	}
	return studies, nil
}

func (r *GormCaseStudyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyContentFilter(r.db.WithContext(ctx).Model(&models.CaseStudyModel{}), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCaseStudyRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return slugExists(ctx, r.db, &models.CaseStudyModel{}, slug, excludeID)
}

func (r *GormCaseStudyRepository) Save(ctx context.Context, cs *content.CaseStudy) error {
	model := models.CaseStudyModelFromDomain(cs)
	if err := saveVersioned(ctx, r.db, model, model.ID, &model.Version); err != nil {
		return err
	}
	cs.Version = model.Version
	return nil
}

func (r *GormCaseStudyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.CaseStudyModel{}, id)
}

func applyContentFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if strings.TrimSpace(filter.Search) != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	if !paginate {
		return query
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(articleSort.orderBy(filter.OrderBy, filter.OrderDir))
}

func slugExists(ctx context.Context, db *gorm.DB, model any, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := db.WithContext(ctx).Model(model).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ content.ArticleRepository   = (*GormArticleRepository)(nil)
	_ content.CaseStudyRepository = (*GormCaseStudyRepository)(nil)
)
