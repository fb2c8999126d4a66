package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
)

// StatsService reads aggregate store totals for the admin dashboard.
type StatsService struct {
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		stats:  stats,
		logger: logger,
	}
}

// Stats returns the store totals.
func (s *StatsService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats, err := s.stats.StoreStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}
