package messaging

import (
	"context"
	"testing"
	"time"

	"adbroker/internal/shared/events"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ch := bus.Subscribe(events.TopicMediaBuy)

	want := events.Envelope{
		EventID:    "evt-1",
		EventType:  "media_buy.created",
		EntityType: "media_buy",
		EntityID:   "zonal_789",
	}
	if err := bus.Publish(context.Background(), events.TopicMediaBuy, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-ch:
		if got.EventID != want.EventID || got.EventType != want.EventType {
			t.Fatalf("unexpected envelope %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected envelope on subscriber channel")
	}
}

func TestPublishIsolatesTopics(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	other := bus.Subscribe("other.topic")

	if err := bus.Publish(context.Background(), events.TopicMediaBuy, events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case env := <-other:
		t.Fatalf("unexpected envelope on other topic: %+v", env)
	default:
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ch := bus.Subscribe(events.TopicMediaBuy)

	// Fill the buffer; the overflow publish must not block.
	for i := 0; i < cap(ch)+1; i++ {
		if err := bus.Publish(context.Background(), events.TopicMediaBuy, events.Envelope{EventID: "evt"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected a full buffer with the overflow dropped, got %d", len(ch))
	}
}

func TestLogMediaBuyEventsStopsOnCancel(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		LogMediaBuyEvents(ctx, bus, nil)
		close(done)
	}()

	if err := bus.Publish(context.Background(), events.TopicMediaBuy, events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected consumer to stop on cancel")
	}
}
