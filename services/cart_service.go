package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/pkg/lock"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCartRetries = 3

type CartService struct {
	DB          *gorm.DB
	CartRepo    *repository.CartRepository
	Products    ProductCatalog
	Restaurants RestaurantDirectory
	Locker      lock.Locker
	Log         *zap.Logger

	// version conflicts tolerated before giving up with Conflict
	MaxRetries int
}

func NewCartService(
	db *gorm.DB,
	cartRepo *repository.CartRepository,
	products ProductCatalog,
	restaurants RestaurantDirectory,
	locker lock.Locker,
	log *zap.Logger,
) *CartService {
	return &CartService{
		DB:          db,
		CartRepo:    cartRepo,
		Products:    products,
		Restaurants: restaurants,
		Locker:      locker,
		Log:         log,
		MaxRetries:  defaultCartRetries,
	}
}

// GetCart returns the user's cart priced at current catalog prices, or the
// canonical empty cart.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	c, err := s.CartRepo.FindByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EmptyCartView(), nil
	}
	if err != nil {
		return nil, err
	}
	products, restaurants, err := s.catalogFor(ctx, c)
	if err != nil {
		return nil, err
	}
	return buildCartView(c, products, restaurants), nil
}

// AddItem adds quantity (at least 1) of a product to the restaurant's group,
// creating the cart and the group when needed.
func (s *CartService) AddItem(ctx context.Context, userID, restaurantID, productID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > entity.MaxItemQuantity {
		return nil, errQuantityTooLarge()
	}

	found, err := s.Products.ProductsByIDs(ctx, []uint{productID})
	if err != nil {
		return nil, err
	}
	p, ok := found[productID]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	if p.RestaurantID != restaurantID {
		return nil, apperr.Validation("product does not belong to this restaurant")
	}
	if !p.IsAvailable {
		return nil, apperr.Validation("%s is currently unavailable", p.Name)
	}

	return s.mutate(ctx, userID, cartMutation{
		create: true,
		apply: func(c *entity.Cart) error {
			g := c.Group(restaurantID)
			if g == nil {
				c.Groups = append(c.Groups, entity.CartGroup{RestaurantID: restaurantID})
				g = &c.Groups[len(c.Groups)-1]
			}
			if it := g.Item(productID); it != nil {
				// both operands are within the cap, so the sum cannot overflow
				if it.Quantity+quantity > entity.MaxItemQuantity {
					return errQuantityTooLarge()
				}
				it.Quantity += quantity
			} else {
				g.Items = append(g.Items, entity.CartItem{ProductID: productID, Quantity: quantity})
			}
			return nil
		},
	})
}

func errQuantityTooLarge() error {
	return apperr.Validation("quantity per item cannot exceed %d", entity.MaxItemQuantity)
}

// RemoveItem drops one line; the group goes with it if it becomes empty.
func (s *CartService) RemoveItem(ctx context.Context, userID, restaurantID, productID uint) (*CartView, error) {
	return s.mutate(ctx, userID, cartMutation{
		apply: func(c *entity.Cart) error {
			g := c.Group(restaurantID)
			if g == nil {
				return apperr.NotFound("restaurant not found in cart")
			}
			if !g.RemoveItem(productID) {
				return apperr.NotFound("product not found in cart")
			}
			return nil
		},
	})
}

// SetQuantity overwrites a line's quantity. Anything below 1 removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, restaurantID, productID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, restaurantID, productID)
	}
	if quantity > entity.MaxItemQuantity {
		return nil, errQuantityTooLarge()
	}
	return s.mutate(ctx, userID, cartMutation{
		apply: func(c *entity.Cart) error {
			g := c.Group(restaurantID)
			if g == nil {
				return apperr.NotFound("restaurant not found in cart")
			}
			it := g.Item(productID)
			if it == nil {
				return apperr.NotFound("product not found in cart")
			}
			it.Quantity = quantity
			return nil
		},
	})
}

// PurgeProduct takes a product out of every cart. Carts left without groups
// are deleted, the others are repriced.
func (s *CartService) PurgeProduct(ctx context.Context, productID uint) error {
	userIDs, err := s.CartRepo.UserIDsWithProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, uid := range userIDs {
		_, err := s.mutate(ctx, uid, cartMutation{
			deleteWhenEmpty: true,
			apply: func(c *entity.Cart) error {
				for i := range c.Groups {
					c.Groups[i].RemoveItem(productID)
				}
				return nil
			},
		})
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return fmt.Errorf("purge product %d from cart of user %d: %w", productID, uid, err)
		}
	}
	s.Log.Info("product purged from carts", zap.Uint("product_id", productID), zap.Int("carts", len(userIDs)))
	return nil
}

type cartMutation struct {
	// start from an empty cart when the user has none
	create bool
	// delete the cart row instead of saving it once no groups are left
	deleteWhenEmpty bool
	apply           func(c *entity.Cart) error
}

// mutate runs read, apply, reprice, guarded write under the user's cart
// lock, retrying the whole sequence on a version conflict.
func (s *CartService) mutate(ctx context.Context, userID uint, m cartMutation) (*CartView, error) {
	unlock, err := s.Locker.Lock(ctx, lock.CartKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	retries := s.MaxRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; attempt <= retries; attempt++ {
		c, err := s.CartRepo.FindByUser(ctx, userID)
		isNew := false
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !m.create {
				return nil, apperr.NotFound("cart not found")
			}
			c, isNew = &entity.Cart{UserID: userID}, true
		case err != nil:
			return nil, err
		}

		if err := m.apply(c); err != nil {
			return nil, err
		}

		products, restaurants, err := s.catalogFor(ctx, c)
		if err != nil {
			return nil, err
		}
		dropVanished(c, products)
		c.DropEmptyGroups()
		c.TotalAmount, _ = CartTotal(c.Groups, products)

		saved, err := s.save(ctx, c, isNew, m.deleteWhenEmpty && len(c.Groups) == 0)
		if err != nil {
			return nil, err
		}
		if saved {
			return buildCartView(c, products, restaurants), nil
		}
		s.Log.Debug("cart version conflict, retrying",
			zap.Uint("user_id", userID), zap.Int("attempt", attempt))
	}
	return nil, apperr.Conflict("cart was modified concurrently, please retry")
}

func (s *CartService) save(ctx context.Context, c *entity.Cart, isNew, remove bool) (bool, error) {
	saved := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isNew {
			if err := s.CartRepo.Create(tx, c); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return nil
				}
				return err
			}
			saved = true
			return nil
		}

		ok, err := s.CartRepo.SaveGuarded(tx, c)
		if err != nil || !ok {
			return err
		}
		if remove {
			err = s.CartRepo.Delete(tx, c.ID)
		} else {
			err = s.CartRepo.ReplaceGroups(tx, c)
		}
		if err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

func (s *CartService) catalogFor(ctx context.Context, c *entity.Cart) (map[uint]entity.Product, map[uint]entity.Restaurant, error) {
	products, err := s.Products.ProductsByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, nil, err
	}
	restaurants, err := s.Restaurants.RestaurantsByIDs(ctx, c.RestaurantIDs())
	if err != nil {
		return nil, nil, err
	}
	return products, restaurants, nil
}

// dropVanished removes lines whose product no longer exists in the catalog.
func dropVanished(c *entity.Cart, products map[uint]entity.Product) {
	for i := range c.Groups {
		g := &c.Groups[i]
		kept := g.Items[:0]
		for _, it := range g.Items {
			if _, ok := products[it.ProductID]; ok {
				kept = append(kept, it)
			}
		}
		g.Items = kept
	}
}
