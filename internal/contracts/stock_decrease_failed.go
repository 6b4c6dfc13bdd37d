package contracts

import "time"

const EventTypeStockDecreaseFailed = "StockDecreaseFailed"

// StockDecreaseFailed is the compensating event for an OrderCreated whose
// decrement could not be applied. The decrement is all-or-nothing; stock is
// never clamped to zero.
type StockDecreaseFailed struct {
	EventType         string    `json:"eventType"`
	EventID           string    `json:"eventId"`
	OrderID           string    `json:"orderId"`
	ProductID         string    `json:"productId"`
	RequestedQuantity int       `json:"requestedQuantity"`
	AvailableStock    int       `json:"availableStock"`
	Reason            string    `json:"reason"`
	FailedAt          time.Time `json:"failedAt"`
}
