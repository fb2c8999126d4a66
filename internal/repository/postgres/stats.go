package postgres

import (
	"context"
	"fmt"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/pkg/database"
)

// StatsRepository implements repository.StatsRepository using PostgreSQL.
type StatsRepository struct {
	pool database.DBTX
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool database.DBTX) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// StoreStats returns the aggregate totals for the admin dashboard.
func (r *StatsRepository) StoreStats(ctx context.Context) (*domain.StoreStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_payment), 0) FROM orders),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM users)`

	var stats domain.StoreStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.OrderCount,
		&stats.Revenue,
		&stats.ProductCount,
		&stats.UserCount,
	)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}

	return &stats, nil
}
