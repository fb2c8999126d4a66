package domain

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user-submitted rating and comment attached to a product.
// Reviews are append-only: there is no edit or delete path.
type Review struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	ReviewerName string    `json:"reviewer_name"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}
