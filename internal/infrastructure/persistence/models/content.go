package models

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/content"
)

// ArticleModel is the persistence model for blog articles.
type ArticleModel struct {
	AggregateModel
	Title       string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Content     string    `gorm:"type:text;not null"`
	Author      string    `gorm:"type:varchar(100)"`
	Category    string    `gorm:"type:varchar(100)"`
	ImageURL    string    `gorm:"type:varchar(500)"`
	PublishedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ArticleModel) TableName() string {
	return "articles"
}

// ToDomain converts the persistence model to a domain Article.
func (m *ArticleModel) ToDomain() *content.Article {
	return &content.Article{
		BaseAggregateRoot: m.aggregate(),
		Title:             m.Title,
		Slug:              m.Slug,
		Content:           m.Content,
		Author:            m.Author,
		Category:          m.Category,
		ImageURL:          m.ImageURL,
		PublishedAt:       m.PublishedAt,
	}
}

// ArticleModelFromDomain creates a persistence model from a domain Article.
func ArticleModelFromDomain(a *content.Article) *ArticleModel {
	m := &ArticleModel{
		Title:       a.Title,
		Slug:        a.Slug,
		Content:     a.Content,
		Author:      a.Author,
		Category:    a.Category,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
	}
	m.setAggregate(a.BaseAggregateRoot)
	return m
}

// CaseStudyModel is the persistence model for case studies.
type CaseStudyModel struct {
	AggregateModel
	Title       string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Summary     string    `gorm:"type:text"`
	Challenge   string    `gorm:"type:text"`
	Solution    string    `gorm:"type:text"`
	Results     string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:varchar(500)"`
	PublishedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CaseStudyModel) TableName() string {
	return "case_studies"
}

// ToDomain converts the persistence model to a domain CaseStudy.
func (m *CaseStudyModel) ToDomain() *content.CaseStudy {
	return &content.CaseStudy{
		BaseAggregateRoot: m.aggregate(),
		Title:             m.Title,
		Slug:              m.Slug,
		Summary:           m.Summary,
		Challenge:         m.Challenge,
		Solution:          m.Solution,
		Results:           m.Results,
		ImageURL:          m.ImageURL,
		PublishedAt:       m.PublishedAt,
	}
}

// CaseStudyModelFromDomain creates a persistence model from a domain CaseStudy.
func CaseStudyModelFromDomain(cs *content.CaseStudy) *CaseStudyModel {
	m := &CaseStudyModel{
		Title:       cs.Title,
		Slug:        cs.Slug,
		Summary:     cs.Summary,
		Challenge:   cs.Challenge,
		Solution:    cs.Solution,
		Results:     cs.Results,
		ImageURL:    cs.ImageURL,
		PublishedAt: cs.PublishedAt,
	}
	m.setAggregate(cs.BaseAggregateRoot)
	return m
}
