package repository

import (
	"context"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

// FindByUserAndProduct returns gorm.ErrRecordNotFound if the user has not
// reviewed the product yet.
func (r *ReviewRepository) FindByUserAndProduct(tx *gorm.DB, userID, productID uint) (*entity.Review, error) {
	var rv entity.Review
	if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// FindByID loads a review with its author.
func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*entity.Review, error) {
	var rv entity.Review
	if err := r.DB.WithContext(ctx).Preload("User").First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Save(tx *gorm.DB, rv *entity.Review) error {
	return tx.Save(rv).Error
}

// Stats returns the average rating and the review count for a product.
func (r *ReviewRepository) Stats(tx *gorm.DB, productID uint) (float64, int, error) {
	var row struct {
		Avg   float64
		Count int
	}
	err := tx.Model(&entity.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

// ListForProduct returns reviews with their authors, newest first.
func (r *ReviewRepository) ListForProduct(ctx context.Context, productID uint) ([]entity.Review, error) {
	var out []entity.Review
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *ReviewRepository) ProductIDsByUser(tx *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&entity.Review{}).Where("user_id = ?", userID).Distinct("product_id").Pluck("product_id", &ids).Error
	return ids, err
}

// DeleteByUser removes the rows outright so the (product, user) index stays
// free.
func (r *ReviewRepository) DeleteByUser(tx *gorm.DB, userID uint) error {
	return tx.Unscoped().Where("user_id = ?", userID).Delete(&entity.Review{}).Error
}
