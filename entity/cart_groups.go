package entity

// CartGroup holds the lines of one restaurant inside a cart.
type CartGroup struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	CartID       uint       `gorm:"uniqueIndex:idx_cart_group_restaurant;not null" json:"-"`
	RestaurantID uint       `gorm:"uniqueIndex:idx_cart_group_restaurant;not null" json:"restaurantId"`
	Position     int        `json:"-"`
	Items        []CartItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// Item returns the line for productID, or nil.
func (g *CartGroup) Item(productID uint) *CartItem {
	for i := range g.Items {
		if g.Items[i].ProductID == productID {
			return &g.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the line for productID and reports whether it existed.
func (g *CartGroup) RemoveItem(productID uint) bool {
	for i := range g.Items {
		if g.Items[i].ProductID == productID {
			g.Items = append(g.Items[:i], g.Items[i+1:]...)
			return true
		}
	}
	return false
}
