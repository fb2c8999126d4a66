package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
	MaxItemsPerCart = 50
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session, refreshing every line from the
// catalog first. Items whose product no longer exists are dropped; surviving
// lines pick up current name, price, and image so the total always reflects
// current prices. If no cart exists, an empty cart is returned.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	refreshed, changed, err := s.refresh(ctx, cart)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.carts.Save(ctx, refreshed); err != nil {
			return nil, fmt.Errorf("save refreshed cart: %w", err)
		}
	}

	return refreshed, nil
}

// AddItem adds a product to the session's cart. If the product is already in
// the cart the quantities are summed instead of duplicating the line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("get product for cart: %w", err)
	}

	cart, err := s.getOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(product.ID); idx >= 0 {
		newQty := cart.Items[idx].Quantity + input.Quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[idx].Quantity = newQty
		// Refresh the display snapshot in case the product changed.
		cart.Items[idx].Name = product.Name
		cart.Items[idx].Price = product.Price
		cart.Items[idx].ImageURL = product.ImageURL
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Quantity:  input.Quantity,
		})
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", product.ID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateItemQuantity sets the quantity of a cart line. A quantity of 0
// removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart item", productID)
		}
		return nil, fmt.Errorf("get cart for update: %w", err)
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes a product line from the cart entirely, regardless of
// its quantity.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart item", productID)
		}
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)

	return cart, nil
}

// ClearCart removes the session's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// refresh re-reads every cart line from the catalog. It returns the cart and
// whether any line changed or was dropped.
func (s *CartService) refresh(ctx context.Context, cart *domain.Cart) (*domain.Cart, bool, error) {
	changed := false
	kept := cart.Items[:0]

	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Product was deleted; drop the line.
				changed = true
				continue
			}
			return nil, false, fmt.Errorf("refresh cart item: %w", err)
		}

		if item.Name != product.Name || item.Price != product.Price || item.ImageURL != product.ImageURL {
			item.Name = product.Name
			item.Price = product.Price
			item.ImageURL = product.ImageURL
			changed = true
		}
		kept = append(kept, item)
	}

	cart.Items = kept
	if changed {
		cart.UpdatedAt = time.Now().UTC()
	}

	return cart, changed, nil
}

// getOrCreateCart retrieves the cart for a session, creating an empty one if
// it does not exist.
func (s *CartService) getOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}
