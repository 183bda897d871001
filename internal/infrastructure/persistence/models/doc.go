// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of ORM
// tags.
//
// Each model exposes ToDomain and FromDomain mappers; repositories only ever read and
// write models.
//
//   - base.go: BaseModel and AggregateModel
//   - product.go: products and product_reviews
//   - order.go: orders with their JSON line item snapshot
//   - user.go: users
//   - content.go: articles and case_studies
package models
