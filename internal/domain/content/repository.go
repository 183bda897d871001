package content

import (
	"context"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ArticleRepository defines the interface for article persistence
type ArticleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Article, error)
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Article, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseStudyRepository defines the interface for case study persistence
type CaseStudyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CaseStudy, error)
	FindBySlug(ctx context.Context, slug string) (*CaseStudy, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CaseStudy, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, cs *CaseStudy) error
	Delete(ctx context.Context, id uuid.UUID) error
}
