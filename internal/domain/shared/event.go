package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent records something that happened inside an aggregate.
// Events are immutable once created.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent carries the identity fields every event shares.
// Concrete events embed it and add their own payload.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a fresh event with a random ID and the
// current time.
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID identifies the aggregate instance that emitted the event.
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }

// AggregateType names the kind of aggregate, e.g. "DurationBillingOrder".
func (e *BaseDomainEvent) AggregateType() string { return e.AggType }
