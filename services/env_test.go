package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Injajul/Foodify2/configs"
	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/pkg/payment"
	"github.com/Injajul/Foodify2/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createCall struct {
	amount   int64
	currency string
	metadata map[string]string
}

// fakePayments records every call and fails on demand.
type fakePayments struct {
	mu      sync.Mutex
	n       int
	created []createCall
	refunds []string
	cancels []string

	createErr error
	refundErr error
	cancelErr error
}

func (f *fakePayments) CreatePaymentIntent(_ context.Context, amount int64, currency string, md map[string]string) (*payment.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.n++
	f.created = append(f.created, createCall{amount: amount, currency: currency, metadata: md})
	id := fmt.Sprintf("pi_test_%d", f.n)
	return &payment.PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (f *fakePayments) Refund(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, id)
	return nil
}

func (f *fakePayments) CancelPaymentIntent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, id)
	return f.cancelErr
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []OrderUpdate
}

func (r *recordingNotifier) OrderUpdated(u OrderUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

type testEnv struct {
	db *gorm.DB

	users       *repository.UserRepository
	restaurants *repository.RestaurantRepository
	products    *repository.ProductRepository
	carts       *repository.CartRepository
	orders      *repository.OrderRepository
	reviews     *repository.ReviewRepository

	cart       *CartService
	checkout   *CheckoutService
	order      *OrderService
	reconciler *PaymentReconciler
	identity   *IdentityService
	review     *ReviewService

	pay      *fakePayments
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := configs.ConnectDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, configs.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	locker := lock.NewLocal()
	e := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		restaurants: repository.NewRestaurantRepository(db),
		products:    repository.NewProductRepository(db),
		carts:       repository.NewCartRepository(db),
		orders:      repository.NewOrderRepository(db),
		reviews:     repository.NewReviewRepository(db),
		pay:         &fakePayments{},
		notifier:    &recordingNotifier{},
	}
	e.cart = NewCartService(db, e.carts, e.products, e.restaurants, locker, log)
	e.checkout = NewCheckoutService(db, e.carts, e.orders, e.products, e.restaurants,
		e.pay, locker, e.notifier, log, "usd", 0)
	e.order = NewOrderService(db, e.orders, e.products, e.restaurants, e.pay, locker, e.notifier, log, 0)
	e.reconciler = NewPaymentReconciler(db, e.orders, e.carts, e.products, e.restaurants, locker, e.notifier, log)
	e.identity = NewIdentityService(db, e.users, e.restaurants, e.products, e.carts, e.orders, e.reviews, e.cart, log)
	e.review = NewReviewService(db, e.reviews, e.products, log)
	return e
}

func (e *testEnv) user(t *testing.T, role string) entity.User {
	t.Helper()
	u := entity.User{ExternalID: "user_" + uuid.NewString(), FullName: "Test " + role, Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) restaurant(t *testing.T, ownerID uint, name string) entity.Restaurant {
	t.Helper()
	r := entity.Restaurant{OwnerID: ownerID, Name: name, DeliveryTime: 30}
	require.NoError(t, e.db.Create(&r).Error)
	return r
}

func (e *testEnv) product(t *testing.T, restaurantID uint, name, price string) entity.Product {
	t.Helper()
	p := entity.Product{RestaurantID: restaurantID, Name: name, Price: decimal.RequireFromString(price), IsAvailable: true}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) setPrice(t *testing.T, productID uint, price string) {
	t.Helper()
	require.NoError(t, e.db.Model(&entity.Product{}).Where("id = ?", productID).
		Update("price", decimal.RequireFromString(price)).Error)
}

// is_available has a DB default, so false must be written explicitly.
func (e *testEnv) setAvailable(t *testing.T, productID uint, ok bool) {
	t.Helper()
	require.NoError(t, e.db.Model(&entity.Product{}).Where("id = ?", productID).
		Update("is_available", ok).Error)
}

func (e *testEnv) hasCart(t *testing.T, userID uint) bool {
	t.Helper()
	_, err := e.carts.FindByUser(context.Background(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func (e *testEnv) loadOrder(t *testing.T, id uint) *entity.Order {
	t.Helper()
	o, err := e.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func validAddress() entity.Address {
	return entity.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// decimalValue is a decimal.Decimal or a Money
type decimalValue interface {
	Equal(decimal.Decimal) bool
	String() string
}

func assertDecEqual(t *testing.T, want string, got decimalValue) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.KindOf(err), err.Error())
}
