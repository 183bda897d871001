package content

import (
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
)

// Article is a blog post shown on the storefront
type Article struct {
	shared.BaseAggregateRoot
	Title       string
	Slug        string
	Content     string
	Author      string
	Category    string
	ImageURL    string
	PublishedAt time.Time
}

// NewArticle creates an article; an empty slug is derived from the title
func NewArticle(title, slug, body string) (*Article, error) {
	a := &Article{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PublishedAt:       time.Now(),
	}
	if err := a.Edit(title, slug, body); err != nil {
		return nil, err
	}
	return a, nil
}

// Edit replaces the required fields
func (a *Article) Edit(title, slug, body string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.InvalidInput("Title is required")
	}
	if len(title) > 200 {
		return shared.InvalidInput("Title cannot exceed 200 characters")
	}
	if strings.TrimSpace(body) == "" {
		return shared.InvalidInput("Content is required")
	}
	normalized, err := normalizeSlug(slug, title)
	if err != nil {
		return err
	}
	a.Title = title
	a.Slug = normalized
	a.Content = body
	a.touch()
	return nil
}

// SetByline sets author and category
func (a *Article) SetByline(author, category string) {
	a.Author = strings.TrimSpace(author)
	a.Category = strings.TrimSpace(category)
	a.touch()
}

// SetImage replaces the image reference; empty clears it
func (a *Article) SetImage(url string) {
	a.ImageURL = url
	a.touch()
}

func (a *Article) touch() {
	a.UpdatedAt = time.Now()
}

func normalizeSlug(slug, title string) (string, error) {
	s := Slugify(slug)
	if s == "" {
		s = Slugify(title)
	}
	if s == "" {
		return "", shared.InvalidInput("Slug is required")
	}
	if len(s) > 200 {
		return "", shared.InvalidInput("Slug cannot exceed 200 characters")
	}
	return s, nil
}
