package events

import "time"

// TopicMediaBuy carries media buy lifecycle events. Publishers and
// consumers share this constant so topic names never drift.
const TopicMediaBuy = "ad-sales.media-buy"

// Envelope is the shared event shape used across the broker.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	TenantID       string    `json:"tenant_id"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}
