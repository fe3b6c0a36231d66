package services

import (
	"context"
	"time"

	"github.com/Injajul/Foodify2/entity"

	"github.com/shopspring/decimal"
)

// ----- Cart projection -----

type CartItemView struct {
	ProductID   uint   `json:"productId"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Price       Money  `json:"price"`
	IsAvailable bool   `json:"isAvailable"`
	Quantity    int    `json:"quantity"`
	LineTotal   Money  `json:"lineTotal"`
}

type CartGroupView struct {
	RestaurantID    uint           `json:"restaurantId"`
	RestaurantName  string         `json:"restaurantName"`
	RestaurantImage string         `json:"restaurantImage"`
	Items           []CartItemView `json:"items"`
	Subtotal        Money          `json:"subtotal"`
}

type CartView struct {
	ID          uint            `json:"id,omitempty"`
	Groups      []CartGroupView `json:"groups"`
	TotalAmount Money           `json:"totalAmount"`
}

// EmptyCartView is what a user without a cart sees.
func EmptyCartView() *CartView {
	return &CartView{Groups: []CartGroupView{}}
}

// buildCartView joins the cart with catalog rows already loaded for the
// same write, so nothing is fetched again.
func buildCartView(c *entity.Cart, products map[uint]entity.Product, restaurants map[uint]entity.Restaurant) *CartView {
	v := &CartView{ID: c.ID, Groups: make([]CartGroupView, 0, len(c.Groups))}
	total := decimal.Zero
	for _, g := range c.Groups {
		r := restaurants[g.RestaurantID]
		gv := CartGroupView{
			RestaurantID:    g.RestaurantID,
			RestaurantName:  r.Name,
			RestaurantImage: r.Image,
			Items:           make([]CartItemView, 0, len(g.Items)),
		}
		sub := decimal.Zero
		for _, it := range g.Items {
			p, ok := products[it.ProductID]
			if !ok {
				continue
			}
			line := LineTotal(p.Price, it.Quantity)
			gv.Items = append(gv.Items, CartItemView{
				ProductID:   it.ProductID,
				Name:        p.Name,
				Image:       p.Image,
				Category:    p.Category,
				Price:       NewMoney(p.Price),
				IsAvailable: p.IsAvailable,
				Quantity:    it.Quantity,
				LineTotal:   NewMoney(line),
			})
			sub = sub.Add(line)
		}
		gv.Subtotal = NewMoney(sub)
		v.Groups = append(v.Groups, gv)
		total = total.Add(sub)
	}
	v.TotalAmount = NewMoney(total)
	return v
}

// ----- Order projection -----

type OrderItemView struct {
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal Money  `json:"lineTotal"`
}

type OrderGroupView struct {
	RestaurantID    uint               `json:"restaurantId"`
	RestaurantName  string             `json:"restaurantName"`
	RestaurantImage string             `json:"restaurantImage"`
	Status          entity.OrderStatus `json:"status"`
	Items           []OrderItemView    `json:"items"`
	Subtotal        Money              `json:"subtotal"`
}

type OrderView struct {
	ID              uint                 `json:"id"`
	UserID          uint                 `json:"userId"`
	Groups          []OrderGroupView     `json:"groups"`
	TotalAmount     Money                `json:"totalAmount"`
	DeliveryAddress entity.Address       `json:"deliveryAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	PaymentStatus   entity.PaymentStatus `json:"paymentStatus"`
	OrderStatus     entity.OrderStatus   `json:"orderStatus"`
	DeliveryTime    int                  `json:"deliveryTime,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// ForRestaurants returns a copy of v holding only the groups of the given
// restaurants.
func (v *OrderView) ForRestaurants(ids []uint) *OrderView {
	keep := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := *v
	out.Groups = make([]OrderGroupView, 0, len(v.Groups))
	for _, g := range v.Groups {
		if _, ok := keep[g.RestaurantID]; ok {
			out.Groups = append(out.Groups, g)
		}
	}
	return &out
}

func buildOrderView(o *entity.Order, products map[uint]entity.Product, restaurants map[uint]entity.Restaurant) *OrderView {
	v := &OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Groups:          make([]OrderGroupView, 0, len(o.Groups)),
		TotalAmount:     NewMoney(o.TotalAmount),
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		OrderStatus:     o.OrderStatus,
		DeliveryTime:    o.DeliveryTime,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, g := range o.Groups {
		r := restaurants[g.RestaurantID]
		gv := OrderGroupView{
			RestaurantID:    g.RestaurantID,
			RestaurantName:  r.Name,
			RestaurantImage: r.Image,
			Status:          g.Status,
			Items:           make([]OrderItemView, 0, len(g.Items)),
		}
		sub := decimal.Zero
		for _, it := range g.Items {
			p := products[it.ProductID]
			line := LineTotal(it.UnitPrice, it.Quantity)
			gv.Items = append(gv.Items, OrderItemView{
				ProductID: it.ProductID,
				Name:      p.Name,
				Image:     p.Image,
				UnitPrice: NewMoney(it.UnitPrice),
				Quantity:  it.Quantity,
				LineTotal: NewMoney(line),
			})
			sub = sub.Add(line)
		}
		gv.Subtotal = NewMoney(sub)
		v.Groups = append(v.Groups, gv)
	}
	return v
}

// orderHydrator loads catalog rows for a batch of orders in two queries.
type orderHydrator struct {
	products    ProductCatalog
	restaurants RestaurantDirectory
}

func (h orderHydrator) views(ctx context.Context, orders []entity.Order) ([]OrderView, map[uint]entity.Restaurant, error) {
	var productIDs, restaurantIDs []uint
	for i := range orders {
		productIDs = append(productIDs, orders[i].ProductIDs()...)
		restaurantIDs = append(restaurantIDs, orders[i].RestaurantIDs()...)
	}
	products, err := h.products.ProductsByIDs(ctx, dedupe(productIDs))
	if err != nil {
		return nil, nil, err
	}
	restaurants, err := h.restaurants.RestaurantsByIDs(ctx, dedupe(restaurantIDs))
	if err != nil {
		return nil, nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, *buildOrderView(&orders[i], products, restaurants))
	}
	return out, restaurants, nil
}

func (h orderHydrator) view(ctx context.Context, o *entity.Order) (*OrderView, map[uint]entity.Restaurant, error) {
	views, restaurants, err := h.views(ctx, []entity.Order{*o})
	if err != nil {
		return nil, nil, err
	}
	return &views[0], restaurants, nil
}

// sellersOf maps each restaurant owner to their restaurants in o.
func sellersOf(o *entity.Order, restaurants map[uint]entity.Restaurant) map[uint][]uint {
	out := make(map[uint][]uint)
	for _, g := range o.Groups {
		r, ok := restaurants[g.RestaurantID]
		if !ok {
			continue
		}
		out[r.OwnerID] = append(out[r.OwnerID], g.RestaurantID)
	}
	return out
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
