package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the snapshot of a checked-out cart. Only payment and fulfillment
// status change after creation.
type Order struct {
	gorm.Model
	UserID uint `gorm:"index;not null" json:"userId"`
	User   User `json:"-"`

	Groups      []OrderGroup    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"groups"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`

	DeliveryAddress Address `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryAddress"`

	PaymentMethod   string        `gorm:"not null;default:Stripe" json:"paymentMethod"`
	PaymentIntentID string        `gorm:"uniqueIndex;not null" json:"paymentIntentId"`
	PaymentStatus   PaymentStatus `gorm:"not null;default:pending" json:"paymentStatus"`
	OrderStatus     OrderStatus   `gorm:"not null;default:Pending" json:"orderStatus"`
	DeliveryTime    int           `json:"deliveryTime,omitempty"`

	Version int64 `gorm:"not null;default:0" json:"-"`
}

func (o *Order) Group(restaurantID uint) *OrderGroup {
	for i := range o.Groups {
		if o.Groups[i].RestaurantID == restaurantID {
			return &o.Groups[i]
		}
	}
	return nil
}

// Recompute sets OrderStatus from the group statuses.
func (o *Order) Recompute() {
	statuses := make([]OrderStatus, 0, len(o.Groups))
	for _, g := range o.Groups {
		statuses = append(statuses, g.Status)
	}
	o.OrderStatus = AggregateStatus(statuses)
}

func (o *Order) RestaurantIDs() []uint {
	ids := make([]uint, 0, len(o.Groups))
	for _, g := range o.Groups {
		ids = append(ids, g.RestaurantID)
	}
	return ids
}

func (o *Order) ProductIDs() []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, g := range o.Groups {
		for _, it := range g.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	return ids
}
