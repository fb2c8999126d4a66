package domain

// StoreStats are the aggregate totals shown on the admin dashboard.
type StoreStats struct {
	OrderCount   int   `json:"order_count"`
	Revenue      int64 `json:"revenue"`
	ProductCount int   `json:"product_count"`
	UserCount    int   `json:"user_count"`
}
