package repository

import (
	"context"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	if err := r.DB.WithContext(ctx).First(&rest, id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

// RestaurantsByIDs is the batch lookup used when hydrating carts and orders.
func (r *RestaurantRepository) RestaurantsByIDs(ctx context.Context, ids []uint) (map[uint]entity.Restaurant, error) {
	out := make(map[uint]entity.Restaurant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []entity.Restaurant
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, rest := range rows {
		out[rest.ID] = rest
	}
	return out, nil
}

// OwnedBy lists the restaurants of one seller.
func (r *RestaurantRepository) OwnedBy(ctx context.Context, ownerID uint) ([]entity.Restaurant, error) {
	var rests []entity.Restaurant
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&rests).Error
	return rests, err
}

func (r *RestaurantRepository) Create(tx *gorm.DB, rest *entity.Restaurant) error {
	return tx.Create(rest).Error
}

func (r *RestaurantRepository) Delete(tx *gorm.DB, id uint) error {
	return tx.Delete(&entity.Restaurant{}, id).Error
}
