package services

import (
	"context"
	"errors"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/repository"
	"gorm.io/gorm"
)

type MenuService struct {
	Restaurants *repository.RestaurantRepository
	Products    *repository.ProductRepository
}

func NewMenuService(restaurants *repository.RestaurantRepository, products *repository.ProductRepository) *MenuService {
	return &MenuService{Restaurants: restaurants, Products: products}
}

type MenuItemView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Price       Money   `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
	AvgRating   float64 `json:"avgRating"`
	NumReviews  int     `json:"numReviews"`
}

type MenuView struct {
	RestaurantID uint           `json:"restaurantId"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Image        string         `json:"image"`
	CuisineType  string         `json:"cuisineType"`
	DeliveryTime int            `json:"deliveryTime"`
	OpeningTime  string         `json:"openingTime"`
	ClosingTime  string         `json:"closingTime"`
	IsOpen       bool           `json:"isOpen"`
	Items        []MenuItemView `json:"items"`
}

// Menu returns one restaurant with its products at current prices. These
// are the ids the cart endpoints take.
func (s *MenuService) Menu(ctx context.Context, restaurantID uint) (*MenuView, error) {
	rest, err := s.Restaurants.FindByID(ctx, restaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("restaurant not found")
	}
	if err != nil {
		return nil, err
	}
	products, err := s.Products.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	v := &MenuView{
		RestaurantID: rest.ID,
		Name:         rest.Name,
		Description:  rest.Description,
		Image:        rest.Image,
		CuisineType:  rest.CuisineType,
		DeliveryTime: rest.DeliveryTime,
		OpeningTime:  rest.OpeningTime,
		ClosingTime:  rest.ClosingTime,
		IsOpen:       rest.IsOpen,
		Items:        make([]MenuItemView, 0, len(products)),
	}
	for _, p := range products {
		v.Items = append(v.Items, menuItem(p))
	}
	return v, nil
}

func menuItem(p entity.Product) MenuItemView {
	return MenuItemView{
		ID: p.ID, Name: p.Name, Description: p.Description, Image: p.Image,
		Category: p.Category, Price: NewMoney(p.Price), IsAvailable: p.IsAvailable,
		AvgRating: p.AvgRating, NumReviews: p.NumReviews,
	}
}
