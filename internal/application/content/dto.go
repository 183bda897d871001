package content

import (
	"io"
	"time"

	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/google/uuid"
)

// Paging defaults for content listings
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListFilter selects one page of content
type ListFilter struct {
	Search  string `form:"search"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// ImageUpload is an image file received with an article form
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateArticleInput holds the fields of a new article. ImageURL is used
// only when no Image is uploaded.
type CreateArticleInput struct {
	Title    string
	Slug     string
	Content  string
	Author   string
	Category string
	ImageURL string
	Image    *ImageUpload
}

// UpdateArticleInput holds a partial article update. Nil fields are left
// unchanged; a non-nil empty ImageURL clears the image.
type UpdateArticleInput struct {
	Title    *string
	Slug     *string
	Content  *string
	Author   *string
	Category *string
	ImageURL *string
	Image    *ImageUpload
}

// ArticleResponse represents an article in API responses
type ArticleResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticlePage is one page of articles
type ArticlePage struct {
	Articles   []ArticleResponse `json:"articles"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalPages int               `json:"total_pages"`
}

// CaseStudyRequest creates or replaces a case study
type CaseStudyRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Slug      string `json:"slug" binding:"omitempty,max=255"`
	Summary   string `json:"summary" binding:"required"`
	Challenge string `json:"challenge" binding:"required"`
	Solution  string `json:"solution" binding:"required"`
	Results   string `json:"results" binding:"required"`
	ImageURL  string `json:"image_url" binding:"omitempty,max=500"`
}

// CaseStudyResponse represents a case study in API responses
type CaseStudyResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Challenge   string    `json:"challenge"`
	Solution    string    `json:"solution"`
	Results     string    `json:"results"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CaseStudyPage is one page of case studies
type CaseStudyPage struct {
	CaseStudies []CaseStudyResponse `json:"case_studies"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
	TotalPages  int                 `json:"total_pages"`
}

// ToArticleResponse converts a domain article to a response DTO
func ToArticleResponse(a *content.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Content:     a.Content,
		Author:      a.Author,
		Category:    a.Category,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToCaseStudyResponse converts a domain case study to a response DTO
func ToCaseStudyResponse(cs *content.CaseStudy) CaseStudyResponse {
	return CaseStudyResponse{
		ID:          cs.ID,
		Title:       cs.Title,
		Slug:        cs.Slug,
		Summary:     cs.Summary,
		Challenge:   cs.Challenge,
		Solution:    cs.Solution,
		Results:     cs.Results,
		ImageURL:    cs.ImageURL,
		PublishedAt: cs.PublishedAt,
		CreatedAt:   cs.CreatedAt,
		UpdatedAt:   cs.UpdatedAt,
	}
}
