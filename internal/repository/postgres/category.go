package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/pkg/database"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Slug, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, slug, created_at FROM categories WHERE id = $1`

	var c domain.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, slug, created_at FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, slug = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, c.Name, c.Slug, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes a category, its products, and their reviews in one
// transaction.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		DELETE FROM reviews
		WHERE product_id IN (SELECT id FROM products WHERE category_id = $1)`
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete category reviews: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("delete category products: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
