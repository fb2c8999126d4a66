package domain

import "time"

// Order statuses.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// Order is a durable record of a checkout. It is created atomically from a
// cart snapshot and is immutable afterward except for its status.
// Payment-card details are validated at checkout but never stored.
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Status        string      `json:"status"`
	NameOnCard    string      `json:"name_on_card"`
	Country       string      `json:"country"`
	City          string      `json:"city"`
	StreetAddress string      `json:"street_address"`
	ZipCode       string      `json:"zip_code"`
	TotalPayment  int64       `json:"total_payment"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem is an immutable snapshot of one cart line at checkout time.
// Later product edits must not alter it.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns price times quantity for this item, in cents.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
