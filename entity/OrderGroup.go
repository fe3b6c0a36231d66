package entity

// OrderGroup is the part of an order fulfilled by one restaurant.
type OrderGroup struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	OrderID      uint        `gorm:"index;not null" json:"-"`
	RestaurantID uint        `gorm:"index;not null" json:"restaurantId"`
	Status       OrderStatus `gorm:"not null;default:Pending" json:"status"`
	Position     int         `json:"-"`
	Items        []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}
