package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPrefix = "pos:events:"
	ChannelAll    = "pos:events:all"

	EventOrderOpened        = "order.opened"
	EventOrderLineAdded     = "order.line_added"
	EventOrderLineRemoved   = "order.line_removed"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentProcessed   = "payment.processed"
	EventTableReleased      = "table.released"
	EventStockAdjusted      = "stock.adjusted"
	EventStockLow           = "stock.low"
)

type Event struct {
	EventType string    `json:"event_type"`
	ActorID   int64     `json:"actor_id,omitempty"`
	BranchID  int32     `json:"branch_id,omitempty"`
	OrderID   int64     `json:"order_id,omitempty"`
	TableID   int32     `json:"table_id,omitempty"`
	ProductID int32     `json:"product_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher fans committed domain changes out to listeners. Implementations
// must not be called from inside a database transaction.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.redis.Publish(ctx, ChannelPrefix+event.EventType, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.redis.Publish(ctx, ChannelAll, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		types = append(types, e.EventType)
	}
	return types
}
