package catalog

import (
	"context"
	"errors"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewRepositories exposes the repositories bound to one transaction
type ReviewRepositories interface {
	ProductRepo() catalog.ProductRepository
	ReviewRepo() catalog.ReviewRepository
}

// ReviewTransactionScope runs fn atomically; an error rolls everything back
type ReviewTransactionScope interface {
	Execute(ctx context.Context, fn func(repos ReviewRepositories) error) error
}

// reviewAttempts bounds the transaction reruns when a concurrent review bumped
// the product version between our read and our save
const reviewAttempts = 3

// ReviewService records reviews and keeps product rating aggregates current
type ReviewService struct {
	scope    ReviewTransactionScope
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(scope ReviewTransactionScope, eventBus shared.EventPublisher, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{scope: scope, eventBus: eventBus, logger: logger}
}

// AddReview stores a review and recomputes the product's mean rating and
// review count in the same transaction. A version conflict on the product
// reruns the whole transaction, up to reviewAttempts times.
func (s *ReviewService) AddReview(ctx context.Context, productID uuid.UUID, req AddReviewRequest) (*ReviewResponse, error) {
	review, err := catalog.NewReview(productID, req.AuthorName, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	var product *catalog.Product
	for attempt := 1; ; attempt++ {
		product, err = s.record(ctx, review)
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt == reviewAttempts {
			break
		}
		s.logger.Debug("Review aggregate conflict, retrying",
			zap.String("product_id", productID.String()),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review added",
		zap.String("product_id", productID.String()),
		zap.Int("rating", review.Rating),
		zap.Float64("product_rating", product.Rating),
		zap.Int("reviews_count", product.ReviewsCount),
	)
	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, catalog.NewReviewAddedEvent(product, review)); err != nil {
			s.logger.Warn("Failed to publish review event", zap.Error(err))
		}
	}

	resp := ToReviewResponse(review)
	return &resp, nil
}

// record runs one transaction: stores the review, then saves the product with
// its refreshed rating aggregate
func (s *ReviewService) record(ctx context.Context, review *catalog.Review) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos ReviewRepositories) error {
		p, err := repos.ProductRepo().FindByID(ctx, review.ProductID)
		if err != nil {
			return mapNotFound(err)
		}
		if !p.IsActive {
			return ErrProductNotFound
		}

		if err := repos.ReviewRepo().Create(ctx, review); err != nil {
			return err
		}
		summary, err := repos.ReviewRepo().SummaryForProduct(ctx, review.ProductID)
		if err != nil {
			return err
		}
		p.ApplyReviewSummary(summary)
		if err := repos.ProductRepo().Save(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}
