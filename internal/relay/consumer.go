package relay

import (
	"context"
	"log"
	"time"

	"github.com/Gusjafo/Light-Microservices/internal/contracts"
	"github.com/Gusjafo/Light-Microservices/internal/messaging"
)

// Subscriptions maps every routing key the relay rebroadcasts to its
// event-type tag.
var Subscriptions = map[string]string{
	messaging.OrderCreatedRoutingKey:        contracts.EventTypeOrderCreated,
	messaging.OrderFailedRoutingKey:         contracts.EventTypeOrderFailed,
	messaging.StockDecreasedRoutingKey:      contracts.EventTypeStockDecreased,
	messaging.StockDecreaseFailedRoutingKey: contracts.EventTypeStockDecreaseFailed,
	messaging.UserCreatedRoutingKey:         contracts.EventTypeUserCreated,
}

// RebroadcastHandler forwards a delivery to the hub verbatim, tagged with its
// event-type name. It never fails the delivery: the relay does not
// participate in the business decision, so there is nothing to retry.
func RebroadcastHandler(hub *Hub, eventType string, logger *log.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		hub.Broadcast(Event{
			Type:       eventType,
			ReceivedAt: time.Now().UTC(),
			Payload:    append([]byte(nil), body...),
		})
		logger.Printf("relayed %s (%d bytes)", eventType, len(body))
		return nil
	}
}
