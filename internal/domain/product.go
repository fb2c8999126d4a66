package domain

import "time"

// Product represents a catalog product. Price is in minor currency units
// (cents). Inventory is decremented at checkout and must never go negative.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Inventory   int       `json:"inventory"`
	ImageURL    string    `json:"image_url,omitempty"`
	CategoryID  string    `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InStock reports whether the product has at least qty units available.
func (p *Product) InStock(qty int) bool {
	return p.Inventory >= qty
}
