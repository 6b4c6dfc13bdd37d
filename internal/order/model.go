package order

import "time"

// Order is immutable once created: admission succeeded, the row committed.
// The asynchronous stock outcome never mutates it.
type Order struct {
	ID        string    `json:"orderId"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
