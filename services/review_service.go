package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"
	"github.com/Injajul/Foodify2/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewService struct {
	DB       *gorm.DB
	Reviews  *repository.ReviewRepository
	Products *repository.ProductRepository
	Log      *zap.Logger
}

func NewReviewService(db *gorm.DB, reviews *repository.ReviewRepository, products *repository.ProductRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{DB: db, Reviews: reviews, Products: products, Log: log}
}

type ReviewIn struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type ReviewerView struct {
	ID           uint   `json:"id"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
}

type ReviewView struct {
	ID        uint         `json:"id"`
	ProductID uint         `json:"productId"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	User      ReviewerView `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func toReviewView(rv *entity.Review) ReviewView {
	return ReviewView{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		User: ReviewerView{
			ID:           rv.UserID,
			FullName:     rv.User.FullName,
			ProfileImage: rv.User.ProfileImage,
		},
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

// Upsert creates or replaces the user's review of a product and refreshes
// the product's rating aggregate in the same transaction.
func (s *ReviewService) Upsert(ctx context.Context, userID, productID uint, rating int, comment string) (*ReviewView, error) {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return nil, apperr.Validation("rating must be between %d and %d", entity.MinRating, entity.MaxRating)
	}
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, err
	}
	comment = strings.TrimSpace(comment)

	var rv *entity.Review
	write := func(tx *gorm.DB) error {
		existing, err := s.Reviews.FindByUserAndProduct(tx, userID, productID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rv = &entity.Review{UserID: userID, ProductID: productID}
		case err != nil:
			return err
		default:
			rv = existing
		}
		rv.Rating, rv.Comment = rating, comment
		if err := s.Reviews.Save(tx, rv); err != nil {
			return err
		}
		avg, n, err := s.Reviews.Stats(tx, productID)
		if err != nil {
			return err
		}
		return s.Products.UpdateRating(tx, productID, roundRating(avg), n)
	}

	err := s.DB.WithContext(ctx).Transaction(write)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent first review by the same user won; update it instead
		err = s.DB.WithContext(ctx).Transaction(write)
	}
	if err != nil {
		return nil, err
	}

	s.Log.Info("review saved", zap.Uint("product_id", productID), zap.Uint("user_id", userID), zap.Int("rating", rating))

	// the write does not carry the author; read it back with the user
	saved, err := s.Reviews.FindByID(ctx, rv.ID)
	if err != nil {
		return nil, err
	}
	out := toReviewView(saved)
	return &out, nil
}

// ListForProduct returns the product's reviews, newest first.
func (s *ReviewService) ListForProduct(ctx context.Context, productID uint) ([]ReviewView, error) {
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, err
	}
	rows, err := s.Reviews.ListForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewView, 0, len(rows))
	for i := range rows {
		out = append(out, toReviewView(&rows[i]))
	}
	return out, nil
}

func roundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
