package entity

// MaxItemQuantity caps the quantity of one cart line.
const MaxItemQuantity = 99

// CartItem stores no price; totals are always derived from the catalog.
type CartItem struct {
	ID          uint `gorm:"primaryKey" json:"-"`
	CartGroupID uint `gorm:"uniqueIndex:idx_cart_item_product;not null" json:"-"`
	ProductID   uint `gorm:"uniqueIndex:idx_cart_item_product;not null" json:"productId"`
	Quantity    int  `gorm:"not null;default:1" json:"quantity"`
	Position    int  `json:"-"`
}
