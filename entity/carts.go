package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is hard-deleted, so the unique user index can be reused by the next cart.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID uint `gorm:"uniqueIndex;not null" json:"userId"`
	User   User `json:"-"`

	Groups      []CartGroup     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"groups"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalAmount"`

	// bumped on every write; guarded updates compare against it
	Version int64 `gorm:"not null;default:0" json:"-"`
}

// Group returns the group for restaurantID, or nil.
func (c *Cart) Group(restaurantID uint) *CartGroup {
	for i := range c.Groups {
		if c.Groups[i].RestaurantID == restaurantID {
			return &c.Groups[i]
		}
	}
	return nil
}

// DropEmptyGroups removes every group that has no items left.
func (c *Cart) DropEmptyGroups() {
	kept := c.Groups[:0]
	for _, g := range c.Groups {
		if len(g.Items) > 0 {
			kept = append(kept, g)
		}
	}
	c.Groups = kept
}

// ProductIDs lists every product referenced by the cart, without duplicates.
func (c *Cart) ProductIDs() []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, g := range c.Groups {
		for _, it := range g.Items {
			if _, ok := seen[it.ProductID]; ok {
				continue
			}
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

func (c *Cart) RestaurantIDs() []uint {
	ids := make([]uint, 0, len(c.Groups))
	for _, g := range c.Groups {
		ids = append(ids, g.RestaurantID)
	}
	return ids
}
