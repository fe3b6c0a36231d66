package entity

import (
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	gorm.Model
	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `json:"comment"`

	ProductID uint    `gorm:"uniqueIndex:idx_review_product_user;not null" json:"productId"`
	Product   Product `json:"-"`
	UserID    uint    `gorm:"uniqueIndex:idx_review_product_user;not null" json:"userId"`
	User      User    `json:"-"`
}
