package messaging

import (
	"context"
	"log/slog"
	"sync"

	"adbroker/internal/shared/events"
)

// Kafka is the event bus adapter for media buy lifecycle events.
// Current implementation is in-process publish/subscribe while runtime wiring
// is finalized for external brokers.
type Kafka struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	logger      *slog.Logger
}

func NewKafka(_ []string, logger *slog.Logger) (*Kafka, error) {
	return &Kafka{
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	k.mu.RLock()
	subs := append([]chan events.Envelope(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			if k.logger != nil {
				k.logger.Warn("dropping event for slow subscriber",
					"event", "kafka_publish_drop",
					"module", "platform/messaging",
					"topic", topic,
					"event_type", event.EventType,
				)
			}
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving future events on topic.
func (k *Kafka) Subscribe(topic string) <-chan events.Envelope {
	ch := make(chan events.Envelope, 64)
	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], ch)
	k.mu.Unlock()
	return ch
}

// LogMediaBuyEvents consumes media buy lifecycle events and writes one audit
// line per envelope. It blocks until ctx is cancelled; callers run it in its
// own goroutine.
func LogMediaBuyEvents(ctx context.Context, bus *Kafka, logger *slog.Logger) {
	ch := bus.Subscribe(events.TopicMediaBuy)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-ch:
			if logger == nil {
				continue
			}
			logger.Info("media buy event",
				"event", "media_buy_event_consumed",
				"module", "platform/messaging",
				"topic", events.TopicMediaBuy,
				"event_type", env.EventType,
				"event_id", env.EventID,
				"entity_id", env.EntityID,
			)
		}
	}
}
