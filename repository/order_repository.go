package repository

import (
	"context"
	"time"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) withTree(db *gorm.DB) *gorm.DB {
	return db.Preload("Groups", byPosition).Preload("Groups.Items", byPosition)
}

// ---------------- Orders ----------------

// Create inserts the order with its groups and items in one statement tree.
func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	for i := range o.Groups {
		o.Groups[i].Position = i
		for j := range o.Groups[i].Items {
			o.Groups[i].Items[j].Position = j
		}
	}
	return tx.Create(o).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.withTree(r.DB.WithContext(ctx)).First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error) {
	var o entity.Order
	err := r.withTree(r.DB.WithContext(ctx)).
		Where("payment_intent_id = ?", intentID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListForUser returns the user's orders, newest first.
func (r *OrderRepository) ListForUser(ctx context.Context, userID uint) ([]entity.Order, error) {
	var out []entity.Order
	err := r.withTree(r.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListForRestaurants returns every order with a group from any of the given
// restaurants, newest first. Groups are not filtered here.
func (r *OrderRepository) ListForRestaurants(ctx context.Context, restaurantIDs []uint) ([]entity.Order, error) {
	if len(restaurantIDs) == 0 {
		return []entity.Order{}, nil
	}
	db := r.DB.WithContext(ctx)
	sub := db.Model(&entity.OrderGroup{}).Select("order_id").Where("restaurant_id IN ?", restaurantIDs)
	var out []entity.Order
	err := r.withTree(db).
		Where("id IN (?)", sub).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// SaveStatusGuarded persists payment status, aggregate status and every
// group status, but only if the order version is still the one that was
// read. Reports false on a lost race.
func (r *OrderRepository) SaveStatusGuarded(tx *gorm.DB, o *entity.Order) (bool, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"payment_status": o.PaymentStatus,
			"order_status":   o.OrderStatus,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	for _, g := range o.Groups {
		if err := tx.Model(&entity.OrderGroup{}).
			Where("id = ?", g.ID).
			Update("status", g.Status).Error; err != nil {
			return false, err
		}
	}
	o.Version++
	return true, nil
}

// SoftDeleteByUser hides the user's orders. Rows stay for bookkeeping.
func (r *OrderRepository) SoftDeleteByUser(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&entity.Order{}).Error
}
