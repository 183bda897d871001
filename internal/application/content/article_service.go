package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrArticleNotFound is returned when an article does not exist
var ErrArticleNotFound = shared.NotFound("Article not found")

var errArticleSlugTaken = shared.NewDomainError(shared.ErrAlreadyExists.Code, "An article with this slug already exists")

// ArticleService manages blog articles and their uploaded images
type ArticleService struct {
	repo   content.ArticleRepository
	images ImageStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewArticleService creates a new ArticleService
func NewArticleService(repo content.ArticleRepository, images ImageStorage, logger *zap.Logger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleService{repo: repo, images: images, logger: logger, now: time.Now}
}

// List returns one page of articles, newest first
func (s *ArticleService) List(ctx context.Context, req ListFilter) (*ArticlePage, error) {
	filter := pageFilter(req)
	articles, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ArticleResponse, len(articles))
	for i := range articles {
		items[i] = ToArticleResponse(&articles[i])
	}
	paged := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &ArticlePage{
		Articles:   paged.Items,
		Total:      paged.Total,
		Page:       paged.Page,
		PerPage:    paged.PageSize,
		TotalPages: paged.TotalPages,
	}, nil
}

// Get returns an article by id
func (s *ArticleService) Get(ctx context.Context, id uuid.UUID) (*ArticleResponse, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToArticleResponse(a)
	return &resp, nil
}

// GetBySlug returns an article by slug
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*ArticleResponse, error) {
	a, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	resp := ToArticleResponse(a)
	return &resp, nil
}

// Create stores a new article. An uploaded image is removed again when the
// article cannot be saved.
func (s *ArticleService) Create(ctx context.Context, input CreateArticleInput) (*ArticleResponse, error) {
	if input.Image != nil && !AllowedImage(input.Image.Filename) {
		return nil, ErrImageTypeNotAllowed
	}

	a, err := content.NewArticle(input.Title, input.Slug, input.Content)
	if err != nil {
		return nil, err
	}
	a.SetByline(input.Author, input.Category)
	if err := s.ensureSlugFree(ctx, a.Slug, nil); err != nil {
		return nil, err
	}

	uploaded := ""
	if input.Image != nil {
		uploaded, err = s.upload(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		a.SetImage(uploaded)
	} else if url := strings.TrimSpace(input.ImageURL); url != "" {
		a.SetImage(url)
	}

	if err := s.repo.Save(ctx, a); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	s.logger.Info("Article created", zap.String("article_id", a.ID.String()), zap.String("slug", a.Slug))
	resp := ToArticleResponse(a)
	return &resp, nil
}

// Update applies a partial update. A new upload replaces the image; an
// explicit empty image URL clears it; a non-empty one points at an external
// image. A managed image that is replaced or cleared is deleted once the
// article is saved.
func (s *ArticleService) Update(ctx context.Context, id uuid.UUID, input UpdateArticleInput) (*ArticleResponse, error) {
	if input.Image != nil && !AllowedImage(input.Image.Filename) {
		return nil, ErrImageTypeNotAllowed
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	title, slug, body := a.Title, a.Slug, a.Content
	if input.Title != nil {
		title = *input.Title
	}
	if input.Slug != nil {
		slug = *input.Slug
	}
	if input.Content != nil {
		body = *input.Content
	}
	if err := a.Edit(title, slug, body); err != nil {
		return nil, err
	}
	author, category := a.Author, a.Category
	if input.Author != nil {
		author = *input.Author
	}
	if input.Category != nil {
		category = *input.Category
	}
	a.SetByline(author, category)
	if err := s.ensureSlugFree(ctx, a.Slug, &a.ID); err != nil {
		return nil, err
	}

	previous := a.ImageURL
	uploaded := ""
	switch {
	case input.Image != nil:
		uploaded, err = s.upload(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		a.SetImage(uploaded)
	case input.ImageURL != nil:
		a.SetImage(strings.TrimSpace(*input.ImageURL))
	}

	if err := s.repo.Save(ctx, a); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if previous != a.ImageURL {
		s.discard(ctx, previous)
	}

	s.logger.Info("Article updated", zap.String("article_id", a.ID.String()))
	resp := ToArticleResponse(a)
	return &resp, nil
}

// Delete removes an article and its managed image. Failing to remove the
// image file does not block the delete.
func (s *ArticleService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	s.discard(ctx, a.ImageURL)
	s.logger.Info("Article deleted", zap.String("article_id", id.String()))
	return nil
}

func (s *ArticleService) find(ctx context.Context, id uuid.UUID) (*content.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *ArticleService) ensureSlugFree(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	taken, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errArticleSlugTaken
	}
	return nil
}

func (s *ArticleService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	name := ImageObjectName(s.now(), img.Filename)
	url, err := s.images.Save(ctx, name, img.Body, img.Size, img.ContentType)
	if err != nil {
		s.logger.Error("Failed to save image", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return url, nil
}

// discard deletes a managed image, logging failures
func (s *ArticleService) discard(ctx context.Context, url string) {
	if url == "" || s.images == nil || !s.images.IsManaged(url) {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("Failed to delete image", zap.String("url", url), zap.Error(err))
	}
}

func pageFilter(req ListFilter) shared.Filter {
	page, perPage := req.Page, req.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return shared.Filter{
		Page:     page,
		PageSize: perPage,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(req.Search),
	}
}
