package catalog

import (
	"context"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountActiveByCategory(ctx context.Context) ([]catalog.CategoryCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.CategoryCount), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *catalog.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Review, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.Review), args.Error(1)
}

func (m *MockReviewRepository) SummaryForProduct(ctx context.Context, productID uuid.UUID) (catalog.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(catalog.ReviewSummary), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockCategoryCache is a mock implementation of CategoryCache
type MockCategoryCache struct {
	mock.Mock
}

func (m *MockCategoryCache) GetOrLoad(ctx context.Context, load func(context.Context) ([]catalog.CategoryCount, error)) ([]catalog.CategoryCount, error) {
	args := m.Called(ctx, load)
	return args.Get(0).([]catalog.CategoryCount), args.Error(1)
}

func (m *MockCategoryCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

// fakeReviewScope runs the callback directly against the mocks. It records
// whether the callback failed so tests can assert on rollback paths.
type fakeReviewScope struct {
	products *MockProductRepository
	reviews  *MockReviewRepository
	failed   bool
	attempts int
}

func (s *fakeReviewScope) Execute(ctx context.Context, fn func(repos ReviewRepositories) error) error {
	s.attempts++
	err := fn(s)
	s.failed = err != nil
	return err
}

func (s *fakeReviewScope) ProductRepo() catalog.ProductRepository { return s.products }
func (s *fakeReviewScope) ReviewRepo() catalog.ReviewRepository   { return s.reviews }
