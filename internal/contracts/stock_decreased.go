package contracts

import "time"

const EventTypeStockDecreased = "StockDecreased"

// StockDecreased is published by inventory-service after the decrement and
// its processed-event marker commit in the same transaction.
type StockDecreased struct {
	EventType      string    `json:"eventType"`
	EventID        string    `json:"eventId"`
	OrderID        string    `json:"orderId"`
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	RemainingStock int       `json:"remainingStock"`
	ProcessedAt    time.Time `json:"processedAt"`
}
