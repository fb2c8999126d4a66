package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/slug"
)

// CategoryInput holds the parameters for creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CategoryService implements the business logic for category management.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		logger:     logger,
	}
}

// Create adds a new category. Duplicate names surface as a conflict.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Slug:      slug.Generate(input.Name),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("category %q already exists", input.Name))
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// GetByID retrieves a category.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	category.Name = input.Name
	category.Slug = slug.Generate(input.Name)

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("category %q already exists", input.Name))
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// Delete removes a category together with its products and their reviews.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("category", id)
		}
		return err
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}
