package domain

import "time"

// Category groups products. Names are unique; deleting a category removes
// its products and their reviews.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
