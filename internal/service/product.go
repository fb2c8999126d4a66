package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/event"
	"github.com/yosefkovan/storefront/internal/repository"
	"github.com/yosefkovan/storefront/internal/storage"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/slug"
)

// SearchLimit is the number of results returned by the storefront search box.
const SearchLimit = 5

// MaxImageSize is the upper bound for product image uploads.
const MaxImageSize = 5 << 20 // 5 MiB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Inventory   int    `json:"inventory" validate:"gte=0"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Inventory   *int    `json:"inventory" validate:"omitempty,gte=0"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
}

// UploadImageInput holds the parameters for a product image upload.
type UploadImageInput struct {
	ContentType string
	Size        int64
	Data        io.Reader
}

// ProductSummary pairs a product with its review summary for detail pages.
type ProductSummary struct {
	Product       *domain.Product `json:"product"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

// ProductService implements the business logic for the catalog.
type ProductService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	store    storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		reviews:  reviews,
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// Create adds a new product to the catalog.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Inventory:   input.Inventory,
		CategoryID:  input.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetByID retrieves a product with its review summary.
func (s *ProductService) GetByID(ctx context.Context, id string) (*ProductSummary, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	avg, count, err := s.reviews.Summary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}

	return &ProductSummary{
		Product:       product,
		AverageRating: avg,
		ReviewCount:   count,
	}, nil
}

// List returns products matching the filter with the total count.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Search returns the top name matches for the storefront search box.
func (s *ProductService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return []domain.Product{}, nil
	}

	products, err := s.products.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Update modifies a product and publishes product.updated.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Inventory != nil {
		product.Inventory = *input.Inventory
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// Delete removes a product, its reviews, and its stored image.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", id)
		}
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	if product.ImageURL != "" {
		if err := s.store.Delete(ctx, imageKey(product)); err != nil {
			s.logger.WarnContext(ctx, "failed to delete product image",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// UploadImage stores a product image and points the product at it. A
// previous image is deleted after the product row is updated.
func (s *ProductService) UploadImage(ctx context.Context, id string, input UploadImageInput) (*domain.Product, error) {
	ext, ok := allowedImageTypes[input.ContentType]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", input.ContentType))
	}
	if input.Size > MaxImageSize {
		return nil, apperrors.InvalidInput("image exceeds maximum size")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product for image upload: %w", err)
	}

	oldKey := imageKey(product)

	key := fmt.Sprintf("products/%s/%s%s", product.ID, uuid.New().String(), ext)
	result, err := s.store.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: input.ContentType,
		Size:        input.Size,
		Data:        input.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload product image: %w", err)
	}

	product.ImageURL = result.URL
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := s.store.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced product image",
				slog.String("product_id", id),
				slog.String("key", oldKey),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product image uploaded",
		slog.String("product_id", id),
		slog.String("key", key),
	)

	return product, nil
}

// imageKey derives the storage key from a product's image URL. Keys are of
// the form "products/<id>/<file>".
func imageKey(p *domain.Product) string {
	if p.ImageURL == "" {
		return ""
	}
	return path.Join("products", p.ID, path.Base(p.ImageURL))
}
