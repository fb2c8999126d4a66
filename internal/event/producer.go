package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yosefkovan/storefront/internal/domain"
	pkgkafka "github.com/yosefkovan/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOrderPlaced    = "storefront.order.placed"
	TopicProductUpdated = "storefront.product.updated"
	TopicUserRegistered = "storefront.user.registered"
	TopicReviewCreated  = "storefront.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeProduct = "product"
	AggregateTypeUser    = "user"
	AggregateTypeReview  = "review"
)

// Source identifier for events originating from this service.
const Source = "storefront"

// OrderPlacedData is the payload for an order.placed event (full order snapshot).
type OrderPlacedData struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Status       string          `json:"status"`
	Items        []OrderItemData `json:"items"`
	TotalPayment int64           `json:"total_payment"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ProductUpdatedData is the payload for a product.updated event.
type ProductUpdatedData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Inventory int    `json:"inventory"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderPlaced publishes an order.placed event with the full order snapshot.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := OrderPlacedData{
		ID:           order.ID,
		UserID:       order.UserID,
		Status:       order.Status,
		Items:        items,
		TotalPayment: order.TotalPayment,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, order.ID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	data := ProductUpdatedData{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Inventory: product.Inventory,
	}

	event, err := pkgkafka.NewEvent(TopicProductUpdated, product.ID, AggregateTypeProduct, Source, data)
	if err != nil {
		return fmt.Errorf("create product.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductUpdated, event); err != nil {
		return fmt.Errorf("publish product.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.updated event",
		slog.String("product_id", product.ID),
	)

	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, Source, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}
