// Package events defines the domain-event envelope published to the message
// broker after a unit of work commits.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// Base provides the common envelope fields.
type Base struct {
	id            uuid.UUID
	eventType     string
	aggregateID   uuid.UUID
	aggregateType string
	occurredAt    time.Time
	payload       []byte
}

// NewBase creates an envelope with a generated id. The body is
// JSON-marshalled into the payload; marshal failures degrade to an empty
// payload rather than dropping the event.
func NewBase(eventType string, aggregateID uuid.UUID, aggregateType string, occurredAt time.Time, body any) Base {
	payload, err := json.Marshal(body)
	if err != nil {
		payload = nil
	}
	return Base{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt,
		payload:       payload,
	}
}

// EventID returns the unique identifier for this event.
func (b Base) EventID() uuid.UUID { return b.id }

// EventType returns the type name of this event.
func (b Base) EventType() string { return b.eventType }

// AggregateID returns the identifier of the aggregate that produced it.
func (b Base) AggregateID() uuid.UUID { return b.aggregateID }

// AggregateType returns the aggregate's type name.
func (b Base) AggregateType() string { return b.aggregateType }

// OccurredAt returns the event time.
func (b Base) OccurredAt() time.Time { return b.occurredAt }

// Payload returns the serialized event body.
func (b Base) Payload() []byte { return b.payload }
