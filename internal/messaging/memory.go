package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryBus is an in-process bus with the same publish/subscribe surface as
// RabbitMQ: at-least-once, per-subscriber FIFO, no cross-key ordering. Used
// by unit tests; Redeliver re-runs a recorded delivery to exercise dedup.
type MemoryBus struct {
	mu        sync.Mutex
	handlers  map[string][]HandlerFunc
	published map[string][][]byte
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers:  make(map[string][]HandlerFunc),
		published: make(map[string][][]byte),
	}
}

func (b *MemoryBus) Subscribe(routingKey string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// PublishJSON records the message and delivers it synchronously to every
// subscriber. Handler errors are swallowed like a nack with no requeue.
func (b *MemoryBus) PublishJSON(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	b.mu.Lock()
	b.published[routingKey] = append(b.published[routingKey], body)
	handlers := append([]HandlerFunc(nil), b.handlers[routingKey]...)
	b.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, body)
	}
	return nil
}

// Published returns the raw bodies recorded for one routing key.
func (b *MemoryBus) Published(routingKey string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.published[routingKey]...)
}

// Redeliver replays the i-th recorded message for a routing key to all
// subscribers, simulating an at-least-once duplicate delivery.
func (b *MemoryBus) Redeliver(ctx context.Context, routingKey string, i int) error {
	b.mu.Lock()
	msgs := b.published[routingKey]
	if i < 0 || i >= len(msgs) {
		b.mu.Unlock()
		return fmt.Errorf("no recorded message %d for %s", i, routingKey)
	}
	body := msgs[i]
	handlers := append([]HandlerFunc(nil), b.handlers[routingKey]...)
	b.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, body)
	}
	return nil
}
