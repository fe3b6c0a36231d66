package configs

import (
	"github.com/Injajul/Foodify2/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedProduct struct {
	name, category, price string
}

var demoRestaurants = []struct {
	name, cuisine string
	delivery      int
	products      []seedProduct
}{
	{"Pizza Hub", "Italian", 35, []seedProduct{
		{"Margherita", "Pizza", "9.50"},
		{"Pepperoni", "Pizza", "11.00"},
		{"Garlic Bread", "Sides", "4.25"},
	}},
	{"Burger Barn", "American", 25, []seedProduct{
		{"Classic Burger", "Burgers", "8.99"},
		{"Cheese Fries", "Sides", "3.75"},
		{"Milkshake", "Drinks", "4.50"},
	}},
}

// SeedDemo creates a demo seller with a couple of restaurants and menus.
// Safe to run repeatedly.
func SeedDemo(db *gorm.DB, log *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		seller := entity.User{}
		if err := tx.Where(entity.User{ExternalID: "demo_seller"}).
			Attrs(entity.User{FullName: "Demo Seller", Email: "seller@example.com", Role: entity.RoleSeller}).
			FirstOrCreate(&seller).Error; err != nil {
			return err
		}

		for _, dr := range demoRestaurants {
			rest := entity.Restaurant{}
			if err := tx.Where(entity.Restaurant{OwnerID: seller.ID, Name: dr.name}).
				Attrs(entity.Restaurant{CuisineType: dr.cuisine, DeliveryTime: dr.delivery, IsOpen: true}).
				FirstOrCreate(&rest).Error; err != nil {
				return err
			}
			for _, sp := range dr.products {
				p := entity.Product{}
				if err := tx.Where(entity.Product{RestaurantID: rest.ID, Name: sp.name}).
					Attrs(entity.Product{Category: sp.category, Price: decimal.RequireFromString(sp.price), IsAvailable: true}).
					FirstOrCreate(&p).Error; err != nil {
					return err
				}
			}
		}
		log.Info("demo data seeded", zap.Uint("seller_id", seller.ID), zap.Int("restaurants", len(demoRestaurants)))
		return nil
	})
}
