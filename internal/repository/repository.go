// Package repository defines the storage interfaces implemented by the
// postgres and redis subpackages.
package repository

import (
	"context"

	"github.com/yosefkovan/storefront/internal/domain"
)

// ProductFilter narrows product listings. Nil fields are ignored.
type ProductFilter struct {
	CategoryID *string
	Search     *string
	MinPrice   *int64
	MaxPrice   *int64
	Page       int
	PerPage    int
}

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	// Search returns up to limit products whose name matches the query,
	// for the storefront search box.
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	// Delete removes a product and its reviews in one transaction.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	// Delete removes a category, its products, and their reviews in one
	// transaction.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository persists product reviews. Reviews are append-only.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	// Summary returns the average rating and review count for a product.
	Summary(ctx context.Context, productID string) (avg float64, count int, err error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	// Create inserts the order and its items and decrements product
	// inventory, all in one transaction. It fails with a conflict error
	// when any product has insufficient inventory, leaving every table
	// untouched.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Exists reports whether any account already uses the given username
	// or email.
	Exists(ctx context.Context, username, email string) (bool, error)
}

// StatsRepository reads aggregate store totals for the admin dashboard.
type StatsRepository interface {
	StoreStats(ctx context.Context) (*domain.StoreStats, error)
}

// CartRepository persists session carts.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
