package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/pkg/lock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ----- Seller actions -----

// SetGroupStatus moves one restaurant's part of an order to status and
// recomputes the order-wide status. Only the restaurant's owner may do it,
// and terminal groups stay put.
func (s *OrderService) SetGroupStatus(ctx context.Context, orderID, restaurantID uint, status string, actorID uint) (*OrderView, error) {
	next, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid status %q", status)
	}

	return s.change(ctx, orderID, orderChange{
		apply: func(o *entity.Order) error {
			g := o.Group(restaurantID)
			if g == nil {
				return apperr.NotFound("restaurant is not part of this order")
			}
			rests, err := s.Restaurants.RestaurantsByIDs(ctx, []uint{restaurantID})
			if err != nil {
				return err
			}
			if r, ok := rests[restaurantID]; !ok || r.OwnerID != actorID {
				return apperr.Unauthorized("only the restaurant owner can update this order")
			}
			if g.Status.Terminal() {
				return apperr.Conflict("order is already %s for this restaurant", g.Status)
			}
			g.Status = next
			o.Recompute()
			return nil
		},
	})
}

// ----- Customer actions -----

// CancelOrder cancels every group of the order and refunds the payment.
// The refund is issued once, before anything is written; if it fails the
// order is left untouched.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uint) (*OrderView, error) {
	return s.change(ctx, orderID, orderChange{
		apply: func(o *entity.Order) error {
			if o.UserID != actorID {
				return apperr.Unauthorized("you can only cancel your own orders")
			}
			if o.OrderStatus == entity.OrderDelivered || o.OrderStatus == entity.OrderCancelled {
				return apperr.Conflict("order is already %s", o.OrderStatus)
			}
			for i := range o.Groups {
				o.Groups[i].Status = entity.OrderCancelled
			}
			o.OrderStatus = entity.OrderCancelled
			o.PaymentStatus = entity.PaymentRefunded
			return nil
		},
		external: func(ctx context.Context, o *entity.Order) error {
			rctx, cancel := context.WithTimeout(ctx, s.PaymentTimeout)
			defer cancel()
			if err := s.Payments.Refund(rctx, o.PaymentIntentID); err != nil {
				return apperr.External(err, "refund failed, order not cancelled")
			}
			return nil
		},
	})
}

type orderChange struct {
	// validates and edits the order in memory
	apply func(o *entity.Order) error
	// side effect outside the database, run once after apply succeeded
	external func(ctx context.Context, o *entity.Order) error
}

// change is the single write path for order status: lock, load, apply,
// external call, guarded write, notify.
func (s *OrderService) change(ctx context.Context, orderID uint, ch orderChange) (*OrderView, error) {
	unlock, err := s.Locker.Lock(ctx, lock.OrderKey(orderID))
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	defer unlock()

	o, err := s.Repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}

	if err := ch.apply(o); err != nil {
		return nil, err
	}
	if ch.external != nil {
		if err := ch.external(ctx, o); err != nil {
			return nil, err
		}
	}

	var saved bool
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		saved, err = s.Repo.SaveStatusGuarded(tx, o)
		return err
	})
	if err == nil && !saved {
		err = apperr.Conflict("order was modified concurrently, please retry")
	}
	if err != nil {
		if ch.external != nil {
			s.Log.Error("external side effect done but order not saved",
				zap.Uint("order_id", o.ID),
				zap.String("payment_intent", o.PaymentIntentID),
				zap.Error(err))
		}
		return nil, err
	}

	view, restaurants, err := s.hydrator().view(ctx, o)
	if err != nil {
		return nil, err
	}
	s.Notifier.OrderUpdated(OrderUpdate{Order: view, Sellers: sellersOf(o, restaurants)})
	s.Log.Info("order updated",
		zap.Uint("order_id", o.ID),
		zap.String("order_status", string(o.OrderStatus)),
		zap.String("payment_status", string(o.PaymentStatus)))
	return view, nil
}
