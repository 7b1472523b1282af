// internal/model/event.go
package model

import "time"

type EventType string

const (
	EventSubscriberCreated  EventType = "subscriber.created"
	EventSubscriberEnriched EventType = "subscriber.enriched"
)

// Event is published to the owning tenant's queue after a directory write.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TenantID     string    `json:"tenant_id"`
	SubscriberID string    `json:"subscriber_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
