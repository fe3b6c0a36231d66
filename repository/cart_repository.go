package repository

import (
	"context"
	"time"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }

// FindByUser loads the cart with groups and items in display order.
// Returns gorm.ErrRecordNotFound when the user has no cart.
func (r *CartRepository) FindByUser(ctx context.Context, userID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := r.DB.WithContext(ctx).
		Preload("Groups", byPosition).
		Preload("Groups.Items", byPosition).
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new cart together with its groups and items. A second
// cart for the same user fails with gorm.ErrDuplicatedKey.
func (r *CartRepository) Create(tx *gorm.DB, c *entity.Cart) error {
	renumber(c)
	return tx.Create(c).Error
}

// SaveGuarded writes the cart header only if nobody else bumped the version
// since c was read. On success c.Version is advanced.
func (r *CartRepository) SaveGuarded(tx *gorm.DB, c *entity.Cart) (bool, error) {
	res := tx.Model(&entity.Cart{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"total_amount": c.TotalAmount,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	c.Version++
	return true, nil
}

// ReplaceGroups swaps the stored groups and items of c for the in-memory ones.
func (r *CartRepository) ReplaceGroups(tx *gorm.DB, c *entity.Cart) error {
	if err := r.deleteChildren(tx, []uint{c.ID}); err != nil {
		return err
	}
	if len(c.Groups) == 0 {
		return nil
	}
	renumber(c)
	for i := range c.Groups {
		c.Groups[i].CartID = c.ID
	}
	return tx.Create(&c.Groups).Error
}

// DeleteByUser removes the user's cart. A missing cart is not an error.
func (r *CartRepository) DeleteByUser(tx *gorm.DB, userID uint) error {
	var ids []uint
	if err := tx.Model(&entity.Cart{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return r.deleteCarts(tx, ids)
}

func (r *CartRepository) Delete(tx *gorm.DB, cartID uint) error {
	return r.deleteCarts(tx, []uint{cartID})
}

// UserIDsWithProduct lists the owners of every cart holding productID.
func (r *CartRepository) UserIDsWithProduct(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("carts AS c").
		Distinct("c.user_id").
		Joins("JOIN cart_groups g ON g.cart_id = c.id").
		Joins("JOIN cart_items i ON i.cart_group_id = g.id").
		Where("i.product_id = ?", productID).
		Order("c.user_id").
		Pluck("c.user_id", &ids).Error
	return ids, err
}

func (r *CartRepository) deleteCarts(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.deleteChildren(tx, ids); err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&entity.Cart{}).Error
}

// sqlite does not enforce the cascade unless foreign keys are switched on,
// so children go first, explicitly.
func (r *CartRepository) deleteChildren(tx *gorm.DB, cartIDs []uint) error {
	groups := tx.Model(&entity.CartGroup{}).Select("id").Where("cart_id IN ?", cartIDs)
	if err := tx.Where("cart_group_id IN (?)", groups).Delete(&entity.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Where("cart_id IN ?", cartIDs).Delete(&entity.CartGroup{}).Error
}

// renumber resets row ids so groups and items are inserted fresh, and keeps
// the in-memory order as the stored position.
func renumber(c *entity.Cart) {
	for i := range c.Groups {
		g := &c.Groups[i]
		g.ID = 0
		g.Position = i
		for j := range g.Items {
			g.Items[j].ID = 0
			g.Items[j].CartGroupID = 0
			g.Items[j].Position = j
		}
	}
}
