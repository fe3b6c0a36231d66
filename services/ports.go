package services

import (
	"context"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/payment"
)

// ProductCatalog is the authoritative source of product prices and
// availability. Unknown ids are absent from the result.
type ProductCatalog interface {
	ProductsByIDs(ctx context.Context, ids []uint) (map[uint]entity.Product, error)
}

type RestaurantDirectory interface {
	RestaurantsByIDs(ctx context.Context, ids []uint) (map[uint]entity.Restaurant, error)
	OwnedBy(ctx context.Context, ownerID uint) ([]entity.Restaurant, error)
}

type UserDirectory interface {
	FindByExternalID(ctx context.Context, externalID string) (*entity.User, error)
}

// PaymentProcessor creates, refunds and voids payment intents.
type PaymentProcessor = payment.Processor

// OrderUpdate is published after every committed order change.
type OrderUpdate struct {
	Order *OrderView
	// restaurant owner id -> ids of that owner's restaurants in the order
	Sellers map[uint][]uint
}

// OrderNotifier must not block; delivery is best effort.
type OrderNotifier interface {
	OrderUpdated(u OrderUpdate)
}

type nopNotifier struct{}

func (nopNotifier) OrderUpdated(OrderUpdate) {}

// NopNotifier drops every update.
var NopNotifier OrderNotifier = nopNotifier{}
