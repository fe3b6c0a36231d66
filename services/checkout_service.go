package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPaymentTimeout = 10 * time.Second

type CheckoutService struct {
	DB          *gorm.DB
	CartRepo    *repository.CartRepository
	OrderRepo   *repository.OrderRepository
	Products    ProductCatalog
	Restaurants RestaurantDirectory
	Payments    PaymentProcessor
	Locker      lock.Locker
	Notifier    OrderNotifier
	Log         *zap.Logger

	Currency       string
	PaymentTimeout time.Duration
}

func NewCheckoutService(
	db *gorm.DB,
	cartRepo *repository.CartRepository,
	orderRepo *repository.OrderRepository,
	products ProductCatalog,
	restaurants RestaurantDirectory,
	payments PaymentProcessor,
	locker lock.Locker,
	notifier OrderNotifier,
	log *zap.Logger,
	currency string,
	paymentTimeout time.Duration,
) *CheckoutService {
	if paymentTimeout <= 0 {
		paymentTimeout = defaultPaymentTimeout
	}
	if notifier == nil {
		notifier = NopNotifier
	}
	return &CheckoutService{
		DB: db, CartRepo: cartRepo, OrderRepo: orderRepo,
		Products: products, Restaurants: restaurants,
		Payments: payments, Locker: locker, Notifier: notifier, Log: log,
		Currency: currency, PaymentTimeout: paymentTimeout,
	}
}

// ----- DTOs from Controller -----

type CheckoutReq struct {
	Address entity.Address `json:"address"`
}

type CheckoutRes struct {
	ClientSecret string     `json:"clientSecret"`
	Order        *OrderView `json:"order"`
}

// Checkout prices the cart, opens a payment intent for it and records the
// order as pending. The cart stays until the payment succeeds.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, addr entity.Address) (*CheckoutRes, error) {
	if err := addr.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	unlock, err := s.Locker.Lock(ctx, lock.CartKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	c, err := s.CartRepo.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.EmptyCart("cart is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(c.Groups) == 0 {
		return nil, apperr.EmptyCart("cart is empty")
	}

	products, err := s.Products.ProductsByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	total, missing := CartTotal(c.Groups, products)
	if len(missing) > 0 {
		return nil, apperr.NotFound("product %d is no longer on the menu", missing[0])
	}
	for _, id := range c.ProductIDs() {
		if p := products[id]; !p.IsAvailable {
			return nil, apperr.Validation("%s is currently unavailable", p.Name)
		}
	}
	if !total.IsPositive() {
		return nil, apperr.Validation("order total must be greater than zero")
	}
	amount, err := MinorUnits(total)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "order total %s is more than a single payment can cover", total.StringFixed(2))
	}

	restaurants, err := s.Restaurants.RestaurantsByIDs(ctx, c.RestaurantIDs())
	if err != nil {
		return nil, err
	}

	order := snapshotOrder(c, products, restaurants, addr)

	payCtx, cancel := context.WithTimeout(ctx, s.PaymentTimeout)
	defer cancel()
	intent, err := s.Payments.CreatePaymentIntent(payCtx, amount, s.Currency, map[string]string{
		"userId": strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		return nil, apperr.External(err, "could not start payment")
	}
	order.PaymentIntentID = intent.ID

	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.OrderRepo.Create(tx, order)
	}); err != nil {
		s.compensate(ctx, intent.ID, userID, err)
		return nil, fmt.Errorf("save order: %w", err)
	}

	view := buildOrderView(order, products, restaurants)
	s.Notifier.OrderUpdated(OrderUpdate{Order: view, Sellers: sellersOf(order, restaurants)})
	s.Log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("payment_intent", intent.ID),
		zap.String("total", total.StringFixed(2)))

	return &CheckoutRes{ClientSecret: intent.ClientSecret, Order: view}, nil
}

// compensate voids an intent whose order could not be stored. It runs even
// if the request context is already gone.
func (s *CheckoutService) compensate(ctx context.Context, intentID string, userID uint, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.PaymentTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.String("payment_intent", intentID),
		zap.Uint("user_id", userID),
		zap.NamedError("cause", cause),
	}
	if err := s.Payments.CancelPaymentIntent(cctx, intentID); err != nil {
		s.Log.Error("order not saved and payment intent could not be cancelled",
			append(fields, zap.Error(err))...)
		return
	}
	s.Log.Error("order not saved, payment intent cancelled", fields...)
}

// snapshotOrder copies the cart into a pending order. Every group starts
// Pending and keeps the unit price seen at checkout.
func snapshotOrder(
	c *entity.Cart,
	products map[uint]entity.Product,
	restaurants map[uint]entity.Restaurant,
	addr entity.Address,
) *entity.Order {
	o := &entity.Order{
		UserID:          c.UserID,
		DeliveryAddress: addr,
		PaymentMethod:   entity.PaymentMethodStripe,
		PaymentStatus:   entity.PaymentPending,
		OrderStatus:     entity.OrderPending,
	}
	for _, g := range c.Groups {
		og := entity.OrderGroup{RestaurantID: g.RestaurantID, Status: entity.OrderPending}
		for _, it := range g.Items {
			og.Items = append(og.Items, entity.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: products[it.ProductID].Price,
			})
		}
		o.Groups = append(o.Groups, og)
		if dt := restaurants[g.RestaurantID].DeliveryTime; dt > o.DeliveryTime {
			o.DeliveryTime = dt
		}
	}
	o.TotalAmount, _ = CartTotal(c.Groups, products)
	return o
}
