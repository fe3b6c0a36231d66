package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Identity provider event types.
const (
	IdentityUserCreated = "user.created"
	IdentityUserUpdated = "user.updated"
	IdentityUserDeleted = "user.deleted"
)

// IdentityEvent is the verified body of an identity provider webhook.
type IdentityEvent struct {
	Type string           `json:"type"`
	Data IdentityUserData `json:"data"`
}

// IdentityUserData carries the user fields we mirror. Nil pointers mean the
// provider did not send the field.
type IdentityUserData struct {
	ID             string  `json:"id"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	ImageURL       *string `json:"image_url"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// fullName is "first last" when a first name is present.
func (d IdentityUserData) fullName() (string, bool) {
	if d.FirstName == nil || strings.TrimSpace(*d.FirstName) == "" {
		return "", false
	}
	last := ""
	if d.LastName != nil {
		last = *d.LastName
	}
	return strings.TrimSpace(*d.FirstName + " " + last), true
}

func (d IdentityUserData) email() (string, bool) {
	if len(d.EmailAddresses) == 0 {
		return "", false
	}
	return d.EmailAddresses[0].EmailAddress, true
}

// IdentityService mirrors identity provider users into the local users table
// and cleans up after deleted accounts.
type IdentityService struct {
	DB          *gorm.DB
	Users       *repository.UserRepository
	Restaurants *repository.RestaurantRepository
	Products    *repository.ProductRepository
	Carts       *repository.CartRepository
	Orders      *repository.OrderRepository
	Reviews     *repository.ReviewRepository
	CartSvc     *CartService
	Log         *zap.Logger
}

func NewIdentityService(
	db *gorm.DB,
	users *repository.UserRepository,
	restaurants *repository.RestaurantRepository,
	products *repository.ProductRepository,
	carts *repository.CartRepository,
	orders *repository.OrderRepository,
	reviews *repository.ReviewRepository,
	cartSvc *CartService,
	log *zap.Logger,
) *IdentityService {
	return &IdentityService{
		DB: db, Users: users, Restaurants: restaurants, Products: products,
		Carts: carts, Orders: orders, Reviews: reviews, CartSvc: cartSvc, Log: log,
	}
}

// ResolveUser maps a verified external identity to the local user.
func (s *IdentityService) ResolveUser(ctx context.Context, externalID string) (*entity.User, error) {
	u, err := s.Users.FindByExternalID(ctx, externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

func (s *IdentityService) HandleEvent(ctx context.Context, ev IdentityEvent) error {
	if ev.Data.ID == "" {
		return apperr.Validation("event has no user id")
	}
	switch ev.Type {
	case IdentityUserCreated:
		_, err := s.CreateUser(ctx, ev.Data)
		return err
	case IdentityUserUpdated:
		return s.UpdateUser(ctx, ev.Data)
	case IdentityUserDeleted:
		return s.DeleteUser(ctx, ev.Data.ID)
	default:
		s.Log.Info("identity event ignored", zap.String("type", ev.Type))
		return nil
	}
}

// CreateUser registers a new buyer. Replays for a known id return the
// existing user unchanged.
func (s *IdentityService) CreateUser(ctx context.Context, d IdentityUserData) (*entity.User, error) {
	if u, err := s.Users.FindByExternalID(ctx, d.ID); err == nil {
		return u, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name, ok := d.fullName()
	if !ok {
		name = "Anonymous"
	}
	email, _ := d.email()
	u := &entity.User{
		ExternalID: d.ID,
		FullName:   name,
		Email:      email,
		Role:       entity.RoleBuyer,
	}
	if d.ImageURL != nil {
		u.ProfileImage = *d.ImageURL
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Users.Create(tx, u)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a replay of the same event
		return s.Users.FindByExternalID(ctx, d.ID)
	}
	if err != nil {
		return nil, err
	}
	s.Log.Info("user created", zap.Uint("user_id", u.ID), zap.String("external_id", d.ID))
	return u, nil
}

// UpdateUser copies only the fields present in the event.
func (s *IdentityService) UpdateUser(ctx context.Context, d IdentityUserData) error {
	u, err := s.Users.FindByExternalID(ctx, d.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.Log.Warn("update for unknown user", zap.String("external_id", d.ID))
		return nil
	}
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if name, ok := d.fullName(); ok {
		updates["full_name"] = name
	}
	if email, ok := d.email(); ok {
		updates["email"] = email
	}
	if d.ImageURL != nil {
		updates["profile_image"] = *d.ImageURL
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Users.Update(tx, u.ID, updates)
	})
}

// DeleteUser removes an account and everything hanging off it. For sellers
// the restaurants and their products go too, after the products have been
// taken out of every cart.
func (s *IdentityService) DeleteUser(ctx context.Context, externalID string) error {
	u, err := s.Users.FindByExternalID(ctx, externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var restaurants []entity.Restaurant
	if u.IsSeller() {
		if restaurants, err = s.Restaurants.OwnedBy(ctx, u.ID); err != nil {
			return err
		}
		for _, r := range restaurants {
			ids, err := s.Products.IDsByRestaurant(ctx, r.ID)
			if err != nil {
				return err
			}
			for _, pid := range ids {
				if err := s.CartSvc.PurgeProduct(ctx, pid); err != nil {
					return err
				}
			}
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range restaurants {
			if err := s.Products.DeleteByRestaurant(tx, r.ID); err != nil {
				return fmt.Errorf("delete products of restaurant %d: %w", r.ID, err)
			}
			if err := s.Restaurants.Delete(tx, r.ID); err != nil {
				return fmt.Errorf("delete restaurant %d: %w", r.ID, err)
			}
		}
		if err := s.Carts.DeleteByUser(tx, u.ID); err != nil {
			return err
		}
		if err := s.Orders.SoftDeleteByUser(tx, u.ID); err != nil {
			return err
		}

		reviewed, err := s.Reviews.ProductIDsByUser(tx, u.ID)
		if err != nil {
			return err
		}
		if err := s.Reviews.DeleteByUser(tx, u.ID); err != nil {
			return err
		}
		for _, pid := range reviewed {
			avg, n, err := s.Reviews.Stats(tx, pid)
			if err != nil {
				return err
			}
			if err := s.Products.UpdateRating(tx, pid, roundRating(avg), n); err != nil {
				return err
			}
		}
		return s.Users.Delete(tx, u.ID)
	})
	if err != nil {
		return err
	}
	s.Log.Info("user deleted",
		zap.Uint("user_id", u.ID),
		zap.String("external_id", externalID),
		zap.Int("restaurants", len(restaurants)))
	return nil
}
