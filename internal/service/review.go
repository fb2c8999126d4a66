package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/event"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

// AddReviewInput holds the parameters for submitting a review.
type AddReviewInput struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"max=5000"`
}

// ReviewList pairs a product's reviews with its rating summary.
type ReviewList struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

// ReviewService implements the business logic for product reviews. Reviews
// are append-only: there is no edit or delete path.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	users    repository.UserRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		users:    users,
		producer: producer,
		logger:   logger,
	}
}

// AddReview appends a review to a product.
func (s *ReviewService) AddReview(ctx context.Context, productID, userID string, input AddReviewInput) (*domain.Review, error) {
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	review := &domain.Review{
		ID:           uuid.New().String(),
		ProductID:    productID,
		UserID:       userID,
		Rating:       input.Rating,
		ReviewerName: user.Username,
		Title:        input.Title,
		Body:         input.Body,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", productID),
		slog.Int("rating", input.Rating),
	)

	return review, nil
}

// ListByProduct returns a product's reviews, newest first, with the rating
// summary.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) (*ReviewList, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	avg, count, err := s.reviews.Summary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}

	return &ReviewList{
		Reviews:       reviews,
		AverageRating: avg,
		ReviewCount:   count,
	}, nil
}
