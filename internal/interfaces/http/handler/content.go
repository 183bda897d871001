package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/content"
	"github.com/gin-gonic/gin"
)

// ArticleReader serves published articles
type ArticleReader interface {
	List(ctx context.Context, req content.ListFilter) (*content.ArticlePage, error)
	GetBySlug(ctx context.Context, slug string) (*content.ArticleResponse, error)
}

// CaseStudyReader serves published case studies
type CaseStudyReader interface {
	List(ctx context.Context, req content.ListFilter) (*content.CaseStudyPage, error)
	GetBySlug(ctx context.Context, slug string) (*content.CaseStudyResponse, error)
}

// ContentHandler serves the public blog and case studies
type ContentHandler struct {
	BaseHandler
	articles    ArticleReader
	caseStudies CaseStudyReader
}

// NewContentHandler creates a new content handler
func NewContentHandler(articles ArticleReader, caseStudies CaseStudyReader) *ContentHandler {
	return &ContentHandler{articles: articles, caseStudies: caseStudies}
}

// ListArticles handles GET /api/v1/articles
func (h *ContentHandler) ListArticles(c *gin.Context) {
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

// GetArticle handles GET /api/v1/articles/:slug
func (h *ContentHandler) GetArticle(c *gin.Context) {
	article, err := h.articles.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// ListCaseStudies handles GET /api/v1/case-studies
func (h *ContentHandler) ListCaseStudies(c *gin.Context) {
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

// GetCaseStudy handles GET /api/v1/case-studies/:slug
func (h *ContentHandler) GetCaseStudy(c *gin.Context) {
	cs, err := h.caseStudies.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cs)
}
