package domain

import "time"

// Cart holds the in-progress purchase selection for one browsing session.
// There is at most one item per product; adding an existing product
// increments its quantity instead of duplicating the line.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a single cart line. Name, Price, and ImageURL are a display
// snapshot of the product; they are refreshed from the catalog on every cart
// read so totals always use current prices.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalPrice returns the sum of price times quantity over all items, in cents.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// Size returns the sum of quantities, not the distinct product count.
func (c *Cart) Size() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// FindItemIndex returns the index of the cart item for the given product,
// or -1 if the cart has no such item.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
