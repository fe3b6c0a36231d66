package entity

import "github.com/shopspring/decimal"

type OrderItem struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	OrderGroupID uint `gorm:"index;not null" json:"-"`
	ProductID    uint `gorm:"not null" json:"productId"`
	Quantity     int  `gorm:"not null" json:"quantity"`

	// price at checkout time, kept for receipts only
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unitPrice"`
	Position  int             `json:"-"`
}
