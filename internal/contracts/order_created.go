package contracts

import "time"

const EventTypeOrderCreated = "OrderCreated"

// OrderCreated is published by order-service after the order row commits.
// The inventory consumer decrements stock in response; the relay rebroadcasts it.
type OrderCreated struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
