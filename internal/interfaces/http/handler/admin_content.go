package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dentalshop/backend/internal/application/content"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxImageSize caps article image uploads when no limit is configured
const DefaultMaxImageSize int64 = 5 << 20

// ArticleAdmin manages articles
type ArticleAdmin interface {
	List(ctx context.Context, req content.ListFilter) (*content.ArticlePage, error)
	Get(ctx context.Context, id uuid.UUID) (*content.ArticleResponse, error)
	Create(ctx context.Context, input content.CreateArticleInput) (*content.ArticleResponse, error)
	Update(ctx context.Context, id uuid.UUID, input content.UpdateArticleInput) (*content.ArticleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseStudyAdmin manages case studies
type CaseStudyAdmin interface {
	List(ctx context.Context, req content.ListFilter) (*content.CaseStudyPage, error)
	Get(ctx context.Context, id uuid.UUID) (*content.CaseStudyResponse, error)
	Create(ctx context.Context, req content.CaseStudyRequest) (*content.CaseStudyResponse, error)
	Update(ctx context.Context, id uuid.UUID, req content.CaseStudyRequest) (*content.CaseStudyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdminArticleHandler handles article management. Create and update take
// multipart forms so an image can travel with the text fields.
type AdminArticleHandler struct {
	BaseHandler
	articles     ArticleAdmin
	maxImageSize int64
}

// NewAdminArticleHandler creates a new admin article handler
func NewAdminArticleHandler(articles ArticleAdmin, maxImageSize int64) *AdminArticleHandler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &AdminArticleHandler{articles: articles, maxImageSize: maxImageSize}
}

// List returns articles newest first.
//
//	GET /api/v1/admin/articles?page&per_page&search
func (h *AdminArticleHandler) List(c *gin.Context) {
	var filter content.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.articles.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Articles, page.Total, page.Page, page.PerPage)
}

// Get returns one article.
//
//	GET /api/v1/admin/articles/:id
func (h *AdminArticleHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// Create stores an article.
//
//	POST /api/v1/admin/articles (multipart: title, slug, content, author, category, image, image_url)
func (h *AdminArticleHandler) Create(c *gin.Context) {
	image, closeImage, ok := h.readImage(c)
	if !ok {
		return
	}
	defer closeImage()

	article, err := h.articles.Create(c.Request.Context(), content.CreateArticleInput{
		Title:    c.PostForm("title"),
		Slug:     c.PostForm("slug"),
		Content:  c.PostForm("content"),
		Author:   c.PostForm("author"),
		Category: c.PostForm("category"),
		ImageURL: c.PostForm("image_url"),
		Image:    image,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, article)
}

// Update applies a partial update; absent form fields are left unchanged.
//
//	PUT /api/v1/admin/articles/:id
func (h *AdminArticleHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	image, closeImage, ok := h.readImage(c)
	if !ok {
		return
	}
	defer closeImage()

	article, err := h.articles.Update(c.Request.Context(), id, content.UpdateArticleInput{
		Title:    optionalForm(c, "title"),
		Slug:     optionalForm(c, "slug"),
		Content:  optionalForm(c, "content"),
		Author:   optionalForm(c, "author"),
		Category: optionalForm(c, "category"),
		ImageURL: optionalForm(c, "image_url"),
		Image:    image,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// Delete removes an article and its managed image.
//
//	DELETE /api/v1/admin/articles/:id
func (h *AdminArticleHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Article deleted")
}

// readImage opens the optional "image" part. It answers the request itself
// and returns ok=false when the upload is unusable.
func (h *AdminArticleHandler) readImage(c *gin.Context) (*content.ImageUpload, func(), bool) {
	noop := func() {}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, true
	}
	if err != nil {
		h.BadRequest(c, "Invalid multipart form")
		return nil, noop, false
	}
	if header.Filename == "" {
		return nil, noop, true
	}
	if header.Size > h.maxImageSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest,
			fmt.Sprintf("Image exceeds the %d byte limit", h.maxImageSize))
		return nil, noop, false
	}

	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable image upload")
		return nil, noop, false
	}
	return &content.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, true
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func optionalForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// AdminCaseStudyHandler handles case study management
type AdminCaseStudyHandler struct {
	BaseHandler
	caseStudies CaseStudyAdmin
}

// NewAdminCaseStudyHandler creates a new admin case study handler
func NewAdminCaseStudyHandler(caseStudies CaseStudyAdmin) *AdminCaseStudyHandler {
	return &AdminCaseStudyHandler{caseStudies: caseStudies}
}

// List returns case studies newest first.
//
//	GET /api/v1/admin/case-studies
func (h *AdminCaseStudyHandler) List(c *gin.Context) {
	var filter content.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.caseStudies.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.CaseStudies, page.Total, page.Page, page.PerPage)
}

// Get returns one case study.
//
//	GET /api/v1/admin/case-studies/:id
func (h *AdminCaseStudyHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	cs, err := h.caseStudies.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cs)
}

// Create stores a case study.
//
//	POST /api/v1/admin/case-studies
func (h *AdminCaseStudyHandler) Create(c *gin.Context) {
	var req content.CaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cs, err := h.caseStudies.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cs)
}

// Update replaces a case study.
//
//	PUT /api/v1/admin/case-studies/:id
func (h *AdminCaseStudyHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req content.CaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cs, err := h.caseStudies.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cs)
}

// Delete removes a case study.
//
//	DELETE /api/v1/admin/case-studies/:id
func (h *AdminCaseStudyHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.caseStudies.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Case study deleted")
}
