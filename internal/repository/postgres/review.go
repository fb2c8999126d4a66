package postgres

import (
	"context"
	"fmt"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/pkg/database"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, reviewer_name, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		rev.ID,
		rev.ProductID,
		rev.UserID,
		rev.Rating,
		rev.ReviewerName,
		rev.Title,
		rev.Body,
		rev.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", rev.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, reviewer_name, title, body, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.ProductID,
			&rev.UserID,
			&rev.Rating,
			&rev.ReviewerName,
			&rev.Title,
			&rev.Body,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// Summary returns the average rating and review count for a product.
// A product with no reviews has average 0 and count 0.
func (r *ReviewRepository) Summary(ctx context.Context, productID string) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1`

	var (
		avg   float64
		count int
	)
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("review summary: %w", err)
	}

	return avg, count, nil
}
