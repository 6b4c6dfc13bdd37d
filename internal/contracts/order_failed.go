package contracts

import "time"

const EventTypeOrderFailed = "OrderFailed"

// OrderFailed records an admission rejection. OrderID is empty when the
// request never made it past validation, so no order row exists.
type OrderFailed struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	OrderID   string    `json:"orderId,omitempty"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failedAt"`
}
