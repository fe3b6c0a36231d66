package services

import (
	"context"
	"time"

	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	DB          *gorm.DB
	Repo        *repository.OrderRepository
	Products    ProductCatalog
	Restaurants RestaurantDirectory
	Payments    PaymentProcessor
	Locker      lock.Locker
	Notifier    OrderNotifier
	Log         *zap.Logger

	PaymentTimeout time.Duration
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	products ProductCatalog,
	restaurants RestaurantDirectory,
	payments PaymentProcessor,
	locker lock.Locker,
	notifier OrderNotifier,
	log *zap.Logger,
	paymentTimeout time.Duration,
) *OrderService {
	if paymentTimeout <= 0 {
		paymentTimeout = defaultPaymentTimeout
	}
	if notifier == nil {
		notifier = NopNotifier
	}
	return &OrderService{
		DB: db, Repo: repo, Products: products, Restaurants: restaurants,
		Payments: payments, Locker: locker, Notifier: notifier, Log: log,
		PaymentTimeout: paymentTimeout,
	}
}

func (s *OrderService) hydrator() orderHydrator {
	return orderHydrator{products: s.Products, restaurants: s.Restaurants}
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]OrderView, error) {
	orders, err := s.Repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views, _, err := s.hydrator().views(ctx, orders)
	return views, err
}

// ListSellerOrders returns every order touching one of the seller's
// restaurants, trimmed to the seller's own groups.
func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID uint) ([]OrderView, error) {
	owned, err := s.Restaurants.OwnedBy(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return []OrderView{}, nil
	}
	ids := make([]uint, 0, len(owned))
	for _, r := range owned {
		ids = append(ids, r.ID)
	}

	orders, err := s.Repo.ListForRestaurants(ctx, ids)
	if err != nil {
		return nil, err
	}
	views, _, err := s.hydrator().views(ctx, orders)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i] = *views[i].ForRestaurants(ids)
	}
	return views, nil
}
