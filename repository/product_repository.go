package repository

import (
	"context"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

// ProductsByIDs returns the live catalog rows for ids keyed by id. Ids that
// do not resolve are simply absent from the map.
func (r *ProductRepository) ProductsByIDs(ctx context.Context, ids []uint) (map[uint]entity.Product, error) {
	out := make(map[uint]entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []entity.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	var p entity.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// IDsByRestaurant lists the ids of every product a restaurant sells.
func (r *ProductRepository) IDsByRestaurant(ctx context.Context, restaurantID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&entity.Product{}).
		Where("restaurant_id = ?", restaurantID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// ListByRestaurant returns a restaurant's products grouped by category.
func (r *ProductRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]entity.Product, error) {
	var products []entity.Product
	err := r.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("category").Order("id").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) Create(tx *gorm.DB, p *entity.Product) error {
	return tx.Create(p).Error
}

func (r *ProductRepository) DeleteByRestaurant(tx *gorm.DB, restaurantID uint) error {
	return tx.Where("restaurant_id = ?", restaurantID).Delete(&entity.Product{}).Error
}

// UpdateRating stores the review aggregate on the product row.
func (r *ProductRepository) UpdateRating(tx *gorm.DB, productID uint, avg float64, n int) error {
	return tx.Model(&entity.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"avg_rating": avg, "num_reviews": n}).Error
}
