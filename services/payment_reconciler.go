package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/pkg/payment"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentReconciler applies verified payment processor events to orders.
// Events may arrive more than once and out of order; each handler is a
// no-op when the order already reflects the event.
type PaymentReconciler struct {
	DB          *gorm.DB
	Orders      *repository.OrderRepository
	Carts       *repository.CartRepository
	Products    ProductCatalog
	Restaurants RestaurantDirectory
	Locker      lock.Locker
	Notifier    OrderNotifier
	Log         *zap.Logger
}

func NewPaymentReconciler(
	db *gorm.DB,
	orders *repository.OrderRepository,
	carts *repository.CartRepository,
	products ProductCatalog,
	restaurants RestaurantDirectory,
	locker lock.Locker,
	notifier OrderNotifier,
	log *zap.Logger,
) *PaymentReconciler {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &PaymentReconciler{
		DB: db, Orders: orders, Carts: carts,
		Products: products, Restaurants: restaurants,
		Locker: locker, Notifier: notifier, Log: log,
	}
}

// Handle dispatches on the event type. Unknown types are acknowledged.
func (r *PaymentReconciler) Handle(ctx context.Context, ev *payment.Event) error {
	switch ev.Type {
	case payment.EventPaymentSucceeded:
		return r.PaymentSucceeded(ctx, ev.PaymentIntentID)
	case payment.EventPaymentFailed:
		return r.PaymentFailed(ctx, ev.PaymentIntentID)
	default:
		r.Log.Info("payment event ignored", zap.String("event_id", ev.ID), zap.String("type", ev.Type))
		return nil
	}
}

// PaymentSucceeded marks the order paid, starts preparation of every
// pending group and deletes the buyer's cart in the same transaction.
func (r *PaymentReconciler) PaymentSucceeded(ctx context.Context, intentID string) error {
	return r.reconcile(ctx, intentID, "succeeded", func(o *entity.Order) bool {
		switch o.PaymentStatus {
		case entity.PaymentSucceeded:
			r.Log.Info("payment already reconciled", zap.Uint("order_id", o.ID))
			return false
		case entity.PaymentRefunded:
			r.Log.Warn("payment succeeded for an order the customer cancelled",
				zap.Uint("order_id", o.ID), zap.String("payment_intent", intentID))
			return false
		}

		// a failed attempt may be followed by a successful retry on the same
		// intent; the order comes back to life in that case
		revive := o.PaymentStatus == entity.PaymentFailed
		if !revive && o.OrderStatus == entity.OrderCancelled {
			r.Log.Error("payment captured for a cancelled order, manual refund needed",
				zap.Uint("order_id", o.ID), zap.String("payment_intent", intentID))
			return false
		}

		o.PaymentStatus = entity.PaymentSucceeded
		for i := range o.Groups {
			g := &o.Groups[i]
			if g.Status == entity.OrderPending || (revive && g.Status == entity.OrderCancelled) {
				g.Status = entity.OrderPreparing
			}
		}
		o.Recompute()
		return true
	}, func(tx *gorm.DB, o *entity.Order) error {
		return r.Carts.DeleteByUser(tx, o.UserID)
	})
}

// PaymentFailed cancels every open group of a still pending order. The cart
// is kept so the customer can try again.
func (r *PaymentReconciler) PaymentFailed(ctx context.Context, intentID string) error {
	return r.reconcile(ctx, intentID, "failed", func(o *entity.Order) bool {
		switch o.PaymentStatus {
		case entity.PaymentFailed:
			r.Log.Info("payment failure already reconciled", zap.Uint("order_id", o.ID))
			return false
		case entity.PaymentSucceeded, entity.PaymentRefunded:
			r.Log.Warn("stale payment failure ignored",
				zap.Uint("order_id", o.ID), zap.String("payment_status", string(o.PaymentStatus)))
			return false
		}

		o.PaymentStatus = entity.PaymentFailed
		for i := range o.Groups {
			if !o.Groups[i].Status.Terminal() {
				o.Groups[i].Status = entity.OrderCancelled
			}
		}
		o.OrderStatus = entity.OrderCancelled
		return true
	}, nil)
}

// reconcile loads the order for intentID under its lock (and the buyer's
// cart lock when the cart is touched), lets decide edit it, and writes the
// result with the extra statements of also in one transaction.
func (r *PaymentReconciler) reconcile(
	ctx context.Context,
	intentID, outcome string,
	decide func(o *entity.Order) bool,
	also func(tx *gorm.DB, o *entity.Order) error,
) error {
	if intentID == "" {
		r.Log.Warn("payment event without payment intent", zap.String("outcome", outcome))
		return nil
	}

	o, err := r.Orders.FindByPaymentIntent(ctx, intentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.Log.Warn("no order for payment intent",
			zap.String("payment_intent", intentID), zap.String("outcome", outcome))
		return nil
	}
	if err != nil {
		return err
	}

	unlockOrder, err := r.Locker.Lock(ctx, lock.OrderKey(o.ID))
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}
	defer unlockOrder()
	if also != nil {
		unlockCart, err := r.Locker.Lock(ctx, lock.CartKey(o.UserID))
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		defer unlockCart()
	}

	// reload: the order may have moved while we waited for the lock
	if o, err = r.Orders.FindByID(ctx, o.ID); err != nil {
		return err
	}
	if !decide(o) {
		return nil
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.Orders.SaveStatusGuarded(tx, o)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("order %d was modified concurrently", o.ID)
		}
		if also != nil {
			return also(tx, o)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.Log.Info("payment reconciled",
		zap.Uint("order_id", o.ID),
		zap.String("payment_intent", intentID),
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.String("order_status", string(o.OrderStatus)))

	h := orderHydrator{products: r.Products, restaurants: r.Restaurants}
	view, restaurants, err := h.view(ctx, o)
	if err != nil {
		r.Log.Warn("order update not published", zap.Uint("order_id", o.ID), zap.Error(err))
		return nil
	}
	r.Notifier.OrderUpdated(OrderUpdate{Order: view, Sellers: sellersOf(o, restaurants)})
	return nil
}
