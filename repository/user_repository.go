package repository

import (
	"context"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/gorm"
)

// UserRepository only talks to the users table.
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByExternalID looks a user up by identity-provider id.
func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	var user entity.User
	if err := r.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(tx *gorm.DB, user *entity.User) error {
	return tx.Create(user).Error
}

func (r *UserRepository) Update(tx *gorm.DB, userID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&entity.User{}).Where("id = ?", userID).Updates(updates).Error
}

// Delete removes the row for good so the external id can be registered again.
func (r *UserRepository) Delete(tx *gorm.DB, userID uint) error {
	return tx.Unscoped().Delete(&entity.User{}, userID).Error
}
