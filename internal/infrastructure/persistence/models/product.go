package models

import (
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Name             string            `gorm:"type:varchar(200);not null;index"`
	Description      string            `gorm:"type:text"`
	ShortDescription string            `gorm:"type:varchar(500)"`
	Category         string            `gorm:"type:varchar(50);not null;index"`
	Price            decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	OriginalPrice    *decimal.Decimal  `gorm:"type:decimal(12,2)"`
	Rating           float64           `gorm:"not null;default:0"`
	ReviewsCount     int               `gorm:"not null;default:0"`
	StockQuantity    int               `gorm:"not null;default:0;index"`
	IsActive         bool              `gorm:"not null;default:true;index"`
	Badge            string            `gorm:"type:varchar(50)"`
	ImageURL         string            `gorm:"type:varchar(500)"`
	Specifications   map[string]string `gorm:"type:jsonb;serializer:json"`
	Features         []string          `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.aggregate(),
		Name:              m.Name,
		Description:       m.Description,
		ShortDescription:  m.ShortDescription,
		Category:          catalog.Category(m.Category),
		Price:             m.Price,
		OriginalPrice:     m.OriginalPrice,
		Rating:            m.Rating,
		ReviewsCount:      m.ReviewsCount,
		StockQuantity:     m.StockQuantity,
		IsActive:          m.IsActive,
		Badge:             m.Badge,
		ImageURL:          m.ImageURL,
		Specifications:    m.Specifications,
		Features:          m.Features,
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.setAggregate(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.ShortDescription = p.ShortDescription
	m.Category = string(p.Category)
	m.Price = p.Price
	m.OriginalPrice = p.OriginalPrice
	m.Rating = p.Rating
	m.ReviewsCount = p.ReviewsCount
	m.StockQuantity = p.StockQuantity
	m.IsActive = p.IsActive
	m.Badge = p.Badge
	m.ImageURL = p.ImageURL
	m.Specifications = p.Specifications
	m.Features = p.Features
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ReviewModel is the persistence model for product reviews.
type ReviewModel struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorName string    `gorm:"type:varchar(100);not null"`
	Rating     int       `gorm:"not null"`
	Comment    string    `gorm:"type:text"`
	IsVerified bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "product_reviews"
}

// ToDomain converts the persistence model to a domain Review.
func (m *ReviewModel) ToDomain() *catalog.Review {
	return &catalog.Review{
		BaseEntity: m.entity(),
		ProductID:  m.ProductID,
		AuthorName: m.AuthorName,
		Rating:     m.Rating,
		Comment:    m.Comment,
		IsVerified: m.IsVerified,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain Review.
func ReviewModelFromDomain(r *catalog.Review) *ReviewModel {
	m := &ReviewModel{
		ProductID:  r.ProductID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsVerified: r.IsVerified,
	}
	m.setEntity(r.BaseEntity)
	return m
}
