package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/pkg/database"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

const productColumns = "id, name, slug, description, price, inventory, image_url, category_id, created_at, updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, price, inventory, image_url, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Inventory,
		p.ImageURL,
		p.CategoryID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("category", p.CategoryID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return r.scanProduct(ctx, query, id)
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.Inventory,
			&p.ImageURL,
			&p.CategoryID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Search returns up to limit products whose name matches the query,
// best matches (shortest names) first.
func (r *ProductRepository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name ILIKE $1
		ORDER BY length(name), name
		LIMIT $2`, productColumns)

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.Inventory,
			&p.ImageURL,
			&p.CategoryID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price = $4, inventory = $5,
		    image_url = $6, category_id = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Inventory,
		p.ImageURL,
		p.CategoryID,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("category", p.CategoryID)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product and its reviews in one transaction.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete product reviews: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// scanProduct is a helper that executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Inventory,
		&p.ImageURL,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
