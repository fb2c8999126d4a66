package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/pkg/database"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

const orderColumns = "id, user_id, status, name_on_card, country, city, street_address, zip_code, total_payment, created_at"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items and decrements product inventory,
// all in one transaction. The guarded UPDATE only matches rows with enough
// stock; zero rows affected means insufficient inventory and the whole
// transaction rolls back.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	decrementQuery := `
		UPDATE products
		SET inventory = inventory - $1, updated_at = NOW()
		WHERE id = $2 AND inventory >= $1`

	for _, item := range o.Items {
		ct, err := tx.Exec(ctx, decrementQuery, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement inventory for product %s: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.Conflict(fmt.Sprintf("insufficient inventory for %s", item.Name))
		}
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, name_on_card, country, city, street_address, zip_code, total_payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.NameOnCard,
		o.Country,
		o.City,
		o.StreetAddress,
		o.ZipCode,
		o.TotalPayment,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items {
		_, err := tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.NameOnCard,
		&o.Country,
		&o.City,
		&o.StreetAddress,
		&o.ZipCode,
		&o.TotalPayment,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}

	return &o, nil
}

// List returns orders matching the filter, newest first, with their items
// and the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)
	orderIDs := make([]string, 0)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.NameOnCard,
			&o.Country,
			&o.City,
			&o.StreetAddress,
			&o.ZipCode,
			&o.TotalPayment,
			&o.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orderIDs) > 0 {
		itemsByOrder, err := r.loadItems(ctx, orderIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			if items, ok := itemsByOrder[orders[i].ID]; ok {
				orders[i].Items = items
			}
		}
	}

	return orders, totalCount, nil
}

// loadItems fetches order items for the given order IDs in one query.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return itemsByOrder, nil
}
