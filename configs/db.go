package configs

import (
	"fmt"

	"github.com/Injajul/Foodify2/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the sqlite database. Unique violations surface as
// gorm.ErrDuplicatedKey. sqlite takes one writer at a time, so the pool is
// pinned to one connection.
func ConnectDB(source string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(source), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Restaurant{}, &entity.Product{}, &entity.Review{},
		&entity.Cart{}, &entity.CartGroup{}, &entity.CartItem{},
		&entity.Order{}, &entity.OrderGroup{}, &entity.OrderItem{},
	)
}
