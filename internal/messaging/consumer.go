package messaging

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one delivery. Returning nil acks the message;
// returning an error nacks it without requeue.
type HandlerFunc func(ctx context.Context, body []byte) error

// StartConsumer binds a durable service queue to the events exchange for one
// routing key and consumes deliveries until ctx is cancelled. Delivery is
// at-least-once: a handler may see the same logical event more than once.
func StartConsumer(ctx context.Context, conn *amqp.Connection, serviceName, routingKey string, handler HandlerFunc, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	queueName := ServiceQueue(serviceName, routingKey)

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare %s: %w", queueName, err)
	}

	if err := ch.QueueBind(q.Name, routingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s to %s: %w", q.Name, routingKey, err)
	}

	msgs, err := ch.Consume(
		q.Name,
		serviceName, // consumer tag
		false,       // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", q.Name, err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				logger.Printf("stopping %s consumer", routingKey)
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Printf("messages channel closed for %s", routingKey)
					return
				}

				if err := handler(ctx, msg.Body); err != nil {
					logger.Printf("handle %s: %v", routingKey, err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}
