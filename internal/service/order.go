package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/event"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
	"github.com/yosefkovan/storefront/pkg/pagination"
)

// CheckoutInput holds the shipping and payment fields collected at checkout.
// Card details are validated here and never persisted.
type CheckoutInput struct {
	NameOnCard    string `json:"name_on_card" validate:"required"`
	CardNumber    string `json:"card_number" validate:"required,credit_card"`
	ExpiryMonth   int    `json:"expiry_month" validate:"required,gte=1,lte=12"`
	ExpiryYear    int    `json:"expiry_year" validate:"required,gte=2000"`
	CVV           string `json:"cvv" validate:"required,len=3"`
	Country       string `json:"country" validate:"required"`
	City          string `json:"city" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	ZipCode       string `json:"zip_code" validate:"required"`
}

// OrderService implements the business logic for checkout and order history.
type OrderService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	cart     *CartService
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	cart *CartService,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		cart:     cart,
		producer: producer,
		logger:   logger,
	}
}

// PlaceOrder turns the session's cart into a durable order. The cart is read
// with fresh prices, the order and its item snapshots are persisted in one
// transaction alongside the inventory decrement, and only after commit is the
// cart cleared and the event published.
func (s *OrderService) PlaceOrder(ctx context.Context, sessionID, userID string, input CheckoutInput) (*domain.Order, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	cart, err := s.cart.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	orderID := uuid.New().String()
	order := &domain.Order{
		ID:            orderID,
		UserID:        userID,
		Status:        domain.OrderStatusPlaced,
		NameOnCard:    input.NameOnCard,
		Country:       input.Country,
		City:          input.City,
		StreetAddress: input.StreetAddress,
		ZipCode:       input.ZipCode,
		TotalPayment:  cart.TotalPrice(),
		Items:         make([]domain.OrderItem, len(cart.Items)),
		CreatedAt:     time.Now().UTC(),
	}
	for i, item := range cart.Items {
		order.Items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// The order is durable at this point; cart cleanup and the event are
	// best effort.
	if err := s.cart.ClearCart(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", orderID),
		slog.String("user_id", userID),
		slog.Int64("total_payment", order.TotalPayment),
		slog.Int("items", len(order.Items)),
	)

	return order, nil
}

// GetByID retrieves an order with its items. Only the order's owner or an
// admin may read it.
func (s *OrderService) GetByID(ctx context.Context, orderID, requesterID, requesterRole string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != requesterID && requesterRole != domain.RoleAdmin {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListByUser returns the user's previous orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string, params pagination.Params) ([]domain.Order, int, error) {
	filter := repository.OrderFilter{
		UserID:  &userID,
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// List returns orders matching the filter, for the admin dashboard.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}
