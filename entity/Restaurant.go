package entity

import (
	"gorm.io/gorm"
)

type Restaurant struct {
	gorm.Model
	OwnerID     uint   `gorm:"index;not null" json:"ownerId"`
	Owner       User   `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	CuisineType string `json:"cuisineType"`

	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	Rating       float64 `json:"rating"`
	DeliveryTime int     `gorm:"default:30" json:"deliveryTime"` // minutes
	OpeningTime  string  `json:"openingTime"`
	ClosingTime  string  `json:"closingTime"`
	IsOpen       bool    `gorm:"default:true" json:"isOpen"`

	Products []Product `json:"-"`
}
