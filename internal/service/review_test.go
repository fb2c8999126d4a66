package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yosefkovan/storefront/internal/domain"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

func newReviewTestService(reviews *mockReviewRepository, products *mockProductRepository, users *mockUserRepository) *ReviewService {
	return NewReviewService(reviews, products, users, newTestProducer(), newTestLogger())
}

func TestReviewService_AddReview_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(lampProduct(), nil)
	users.On("GetByID", ctx, "user-1").Return(testUser(), nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.AddReview(ctx, "prod-1", "user-1", AddReviewInput{
		Rating: 5,
		Title:  "Lovely lamp",
		Body:   "Warm light, solid base.",
	})

	require.NoError(t, err)
	assert.Equal(t, "prod-1", review.ProductID)
	assert.Equal(t, "user-1", review.UserID)
	assert.Equal(t, "dana", review.ReviewerName)
	assert.Equal(t, 5, review.Rating)
	assert.NotEmpty(t, review.ID)
	assert.NotZero(t, review.CreatedAt)

	reviews.AssertExpectations(t)
}

func TestReviewService_AddReview_RatingOutOfRange(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		review, err := svc.AddReview(ctx, "prod-1", "user-1", AddReviewInput{Rating: rating})
		assert.Nil(t, review)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_AddReview_ProductNotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-missing").Return(nil, apperrors.NotFound("product", "prod-missing"))

	review, err := svc.AddReview(ctx, "prod-missing", "user-1", AddReviewInput{Rating: 4})
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_AddReview_UserNotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(lampProduct(), nil)
	users.On("GetByID", ctx, "user-missing").Return(nil, apperrors.NotFound("user", "user-missing"))

	review, err := svc.AddReview(ctx, "prod-1", "user-missing", AddReviewInput{Rating: 4})
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_ListByProduct(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	stored := []domain.Review{
		{ID: "review-1", ProductID: "prod-1", Rating: 5},
		{ID: "review-2", ProductID: "prod-1", Rating: 4},
	}

	products.On("GetByID", ctx, "prod-1").Return(lampProduct(), nil)
	reviews.On("ListByProduct", ctx, "prod-1").Return(stored, nil)
	reviews.On("Summary", ctx, "prod-1").Return(4.5, 2, nil)

	result, err := svc.ListByProduct(ctx, "prod-1")

	require.NoError(t, err)
	assert.Len(t, result.Reviews, 2)
	assert.Equal(t, 4.5, result.AverageRating)
	assert.Equal(t, 2, result.ReviewCount)
}

func TestReviewService_ListByProduct_ProductNotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	users := new(mockUserRepository)
	svc := newReviewTestService(reviews, products, users)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-missing").Return(nil, apperrors.NotFound("product", "prod-missing"))

	result, err := svc.ListByProduct(ctx, "prod-missing")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
