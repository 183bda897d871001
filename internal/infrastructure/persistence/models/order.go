package models

import (
	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
// Items are stored as a JSON snapshot.
type OrderModel struct {
	AggregateModel
	UserID                 *uuid.UUID       `gorm:"type:uuid;index"`
	CustomerName           string           `gorm:"type:varchar(150);not null"`
	CustomerPhone          string           `gorm:"type:varchar(30)"`
	Items                  []order.LineItem `gorm:"type:jsonb;serializer:json;not null"`
	TotalAmount            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Currency               string           `gorm:"type:varchar(3);not null;default:'MAD'"`
	Status                 string           `gorm:"type:varchar(30);not null;index"`
	WhatsAppMessagePreview string           `gorm:"column:whatsapp_message_preview;type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	items := m.Items
	if items == nil {
		items = []order.LineItem{}
	}
	return &order.Order{
		BaseAggregateRoot: m.aggregate(),
		UserID:            m.UserID,
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		Items:             items,
		TotalAmount:       m.TotalAmount,
		Currency:          valueobject.Currency(m.Currency),
		Status:            order.Status(m.Status),
		WhatsAppMessage:   m.WhatsAppMessagePreview,
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.setAggregate(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.CustomerName = o.CustomerName
	m.CustomerPhone = o.CustomerPhone
	m.Items = o.Items
	m.TotalAmount = o.TotalAmount
	m.Currency = string(o.Currency)
	m.Status = string(o.Status)
	m.WhatsAppMessagePreview = o.WhatsAppMessage
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
