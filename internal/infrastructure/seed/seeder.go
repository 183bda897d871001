// Package seed fills an empty database with the demo storefront: the curated
// catalog and content from fixtures.yaml, an administrator account, and
// generated reviews, extra products and orders.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/dentalshop/backend/internal/domain/identity"
	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repositories are the stores the seeder writes to
type Repositories struct {
	Products    catalog.ProductRepository
	Reviews     catalog.ReviewRepository
	Users       identity.UserRepository
	Orders      order.OrderRepository
	Articles    content.ArticleRepository
	CaseStudies content.CaseStudyRepository
}

// Options controls how much generated data is added
type Options struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// RandomProducts are generated on top of the fixture catalog
	RandomProducts int
	// MaxReviewsPerProduct bounds the generated reviews; each product gets 0..max
	MaxReviewsPerProduct int
	DemoOrders           int
}

// DefaultOptions mirrors a fresh development install
func DefaultOptions() Options {
	return Options{
		AdminUsername:        "admin",
		AdminEmail:           "admin@example.com",
		AdminPassword:        "admin12345",
		RandomProducts:       20,
		MaxReviewsPerProduct: 5,
		DemoOrders:           15,
	}
}

// Report counts what a run created
type Report struct {
	AdminCreated bool
	Products     int
	Reviews      int
	Orders       int
	Articles     int
	CaseStudies  int
}

// Seeder writes fixtures and generated data
type Seeder struct {
	repos    Repositories
	fixtures *Fixtures
	faker    *gofakeit.Faker
	logger   *zap.Logger
}

// Option configures a Seeder
type Option func(*Seeder)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandSeed makes the generated data reproducible. Zero picks a random seed.
func WithRandSeed(seed uint64) Option {
	return func(s *Seeder) {
		s.faker = gofakeit.New(seed)
	}
}

// New creates a Seeder over repos. Nil fixtures seed generated data only.
func New(repos Repositories, fixtures *Fixtures, opts ...Option) *Seeder {
	if fixtures == nil {
		fixtures = &Fixtures{}
	}
	s := &Seeder{
		repos:    repos,
		fixtures: fixtures,
		faker:    gofakeit.New(0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run seeds every section. Sections already holding data are skipped, so
// running twice does not duplicate anything.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}

	created, err := s.seedAdmin(ctx, opts)
	if err != nil {
		return report, fmt.Errorf("admin: %w", err)
	}
	report.AdminCreated = created

	products, err := s.seedProducts(ctx, opts.RandomProducts)
	if err != nil {
		return report, fmt.Errorf("products: %w", err)
	}
	report.Products = len(products)

	if report.Reviews, err = s.seedReviews(ctx, products, opts.MaxReviewsPerProduct); err != nil {
		return report, fmt.Errorf("reviews: %w", err)
	}
	if report.Orders, err = s.seedOrders(ctx, products, opts.DemoOrders); err != nil {
		return report, fmt.Errorf("orders: %w", err)
	}
	if report.Articles, err = s.seedArticles(ctx); err != nil {
		return report, fmt.Errorf("articles: %w", err)
	}
	if report.CaseStudies, err = s.seedCaseStudies(ctx); err != nil {
		return report, fmt.Errorf("case studies: %w", err)
	}

	s.logger.Info("Seed completed",
		zap.Bool("admin_created", report.AdminCreated),
		zap.Int("products", report.Products),
		zap.Int("reviews", report.Reviews),
		zap.Int("orders", report.Orders),
		zap.Int("articles", report.Articles),
		zap.Int("case_studies", report.CaseStudies),
	)
	return report, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, opts Options) (bool, error) {
	if opts.AdminUsername == "" {
		return false, nil
	}
	exists, err := s.repos.Users.ExistsByUsername(ctx, opts.AdminUsername)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("Admin account exists, leaving it unchanged", zap.String("username", opts.AdminUsername))
		return false, nil
	}

	admin, err := identity.NewAdmin(opts.AdminUsername, opts.AdminEmail, opts.AdminPassword)
	if err != nil {
		return false, err
	}
	if err := s.repos.Users.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

// seedProducts inserts the fixture catalog plus n generated products, only
// when the catalog is empty. It returns the products it created.
func (s *Seeder) seedProducts(ctx context.Context, n int) ([]*catalog.Product, error) {
	count, err := s.repos.Products.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		s.logger.Info("Catalog not empty, skipping products", zap.Int64("existing", count))
		return nil, nil
	}

	created := make([]*catalog.Product, 0, len(s.fixtures.Products)+n)
	for _, pf := range s.fixtures.Products {
		p, err := productFromFixture(pf)
		if err != nil {
			return created, fmt.Errorf("%q: %w", pf.Name, err)
		}
		if err := s.repos.Products.Save(ctx, p); err != nil {
			return created, err
		}
		created = append(created, p)
	}

	for i := 0; i < n; i++ {
		p, err := s.randomProduct()
		if err != nil {
			return created, err
		}
		if err := s.repos.Products.Save(ctx, p); err != nil {
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

func productFromFixture(pf ProductFixture) (*catalog.Product, error) {
	p, err := catalog.NewProduct(pf.Name, catalog.Category(pf.Category), pf.Price, pf.Stock)
	if err != nil {
		return nil, err
	}
	if err := p.SetDescriptions(pf.Description, pf.ShortDescription); err != nil {
		return nil, err
	}
	if pf.OriginalPrice != nil {
		if err := p.SetPrice(pf.Price, pf.OriginalPrice); err != nil {
			return nil, err
		}
	}
	p.SetPresentation(pf.Badge, pf.ImageURL)
	if len(pf.Specifications) > 0 {
		p.SetSpecifications(pf.Specifications)
	}
	if len(pf.Features) > 0 {
		p.SetFeatures(pf.Features)
	}
	p.ClearDomainEvents()
	return p, nil
}

func (s *Seeder) randomProduct() (*catalog.Product, error) {
	categories := catalog.Categories()
	category := categories[s.faker.Number(0, len(categories)-1)]
	price := decimal.NewFromFloat(s.faker.Price(50, 25000)).Round(2)

	p, err := catalog.NewProduct(s.faker.ProductName(), category, price, s.faker.Number(0, 50))
	if err != nil {
		return nil, err
	}
	if err := p.SetDescriptions(s.faker.Paragraph(1, 4, 12, " "), s.faker.Sentence(8)); err != nil {
		return nil, err
	}
	p.SetFeatures([]string{s.faker.ProductFeature(), s.faker.ProductFeature()})
	p.ClearDomainEvents()
	return p, nil
}

// seedReviews writes 0..max reviews per product and stores the resulting
// rating summary on the product
func (s *Seeder) seedReviews(ctx context.Context, products []*catalog.Product, maxReviews int) (int, error) {
	if maxReviews <= 0 {
		return 0, nil
	}
	total := 0
	for _, p := range products {
		n := s.faker.Number(0, maxReviews)
		if n == 0 {
			continue
		}
		ratings := make([]int, 0, n)
		for i := 0; i < n; i++ {
			r, err := catalog.NewReview(p.ID, s.faker.Name(), s.faker.Number(catalog.MinRating, catalog.MaxRating), s.faker.Sentence(12))
			if err != nil {
				return total, err
			}
			r.IsVerified = s.faker.Bool()
			if err := s.repos.Reviews.Create(ctx, r); err != nil {
				return total, err
			}
			ratings = append(ratings, r.Rating)
		}
		p.ApplyReviewSummary(catalog.Summarize(ratings))
		if err := s.repos.Products.Save(ctx, p); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// seedOrders places n guest orders of 1-3 lines each. Stock is not decremented;
// the orders are history, not reservations.
func (s *Seeder) seedOrders(ctx context.Context, products []*catalog.Product, n int) (int, error) {
	if n <= 0 || len(products) == 0 {
		return 0, nil
	}
	existing, err := s.repos.Orders.Count(ctx, shared.Filter{})
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	statuses := order.Statuses()
	for i := 0; i < n; i++ {
		lines := s.faker.Number(1, min(3, len(products)))
		picked := make(map[uuid.UUID]bool, lines)
		items := make([]order.LineItem, 0, lines)
		for len(items) < lines {
			p := products[s.faker.Number(0, len(products)-1)]
			if picked[p.ID] {
				continue
			}
			picked[p.ID] = true
			items = append(items, order.NewLineItem(p.ID, p.Name, s.faker.Number(1, 4), p.Price))
		}

		o, err := order.NewOrder(s.faker.Name(), nil, items)
		if err != nil {
			return i, err
		}
		o.SetPhone(s.faker.Phone())
		o.CreatedAt = s.faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now())
		if err := o.ChangeStatus(statuses[s.faker.Number(0, len(statuses)-1)]); err != nil {
			return i, err
		}
		o.ClearDomainEvents()
		if err := s.repos.Orders.Create(ctx, o); err != nil {
			return i, err
		}
	}
	return n, nil
}

func (s *Seeder) seedArticles(ctx context.Context) (int, error) {
	created := 0
	for _, af := range s.fixtures.Articles {
		a, err := content.NewArticle(af.Title, af.Slug, af.Content)
		if err != nil {
			return created, fmt.Errorf("%q: %w", af.Title, err)
		}
		taken, err := s.repos.Articles.ExistsBySlug(ctx, a.Slug, nil)
		if err != nil {
			return created, err
		}
		if taken {
			continue
		}
		a.SetByline(af.Author, af.Category)
		a.SetImage(af.ImageURL)
		if !af.PublishedAt.IsZero() {
			a.PublishedAt = af.PublishedAt
		}
		if err := s.repos.Articles.Save(ctx, a); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedCaseStudies(ctx context.Context) (int, error) {
	created := 0
	for _, cf := range s.fixtures.CaseStudies {
		cs, err := content.NewCaseStudy(cf.Title, cf.Slug, content.CaseStudySections{
			Summary:   cf.Summary,
			Challenge: cf.Challenge,
			Solution:  cf.Solution,
			Results:   cf.Results,
		})
		if err != nil {
			return created, fmt.Errorf("%q: %w", cf.Title, err)
		}
		taken, err := s.repos.CaseStudies.ExistsBySlug(ctx, cs.Slug, nil)
		if err != nil {
			return created, err
		}
		if taken {
			continue
		}
		cs.SetImage(cf.ImageURL)
		if !cf.PublishedAt.IsZero() {
			cs.PublishedAt = cf.PublishedAt
		}
		if err := s.repos.CaseStudies.Save(ctx, cs); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// ErrNoRepositories is returned by Validate when a store is missing
var ErrNoRepositories = errors.New("seed: every repository is required")

// Validate checks that every repository is set
func (r Repositories) Validate() error {
	if r.Products == nil || r.Reviews == nil || r.Users == nil ||
		r.Orders == nil || r.Articles == nil || r.CaseStudies == nil {
		return ErrNoRepositories
	}
	return nil
}
