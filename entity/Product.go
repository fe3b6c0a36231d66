package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	RestaurantID uint       `gorm:"index;not null" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Category    string          `json:"category"`
	IsAvailable bool            `gorm:"default:true" json:"isAvailable"`

	AvgRating  float64  `json:"avgRating"`
	NumReviews int      `json:"numReviews"`
	Reviews    []Review `json:"-"`
}
