package entity

import (
	"gorm.io/gorm"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	gorm.Model
	ExternalID   string `gorm:"uniqueIndex;not null" json:"externalId"` // identity provider user id
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
	Role         string `gorm:"not null;default:buyer" json:"role"`

	RestaurantsOwned []Restaurant `gorm:"foreignKey:OwnerID" json:"-"`
	Orders           []Order      `json:"-"`
	Reviews          []Review     `json:"-"`
}

func (u *User) IsSeller() bool { return u.Role == RoleSeller }
