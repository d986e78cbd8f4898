package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a product or an invoice. AggregateID is the
// product uuid or the invoice number.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
}

// BaseDomainEvent carries the envelope shared by every concrete event and is
// embedded by them
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     string    `json:"aggregateId"`
	AggType   string    `json:"aggregateType"`
}

// NewBaseDomainEvent stamps a fresh event id and the time at
func NewBaseDomainEvent(eventType, aggType, aggID string, at time.Time) BaseDomainEvent {
	return BaseDomainEvent{ID: uuid.New(), Type: eventType, Timestamp: at, AggID: aggID, AggType: aggType}
}

func (e BaseDomainEvent) EventID() uuid.UUID { return e.ID }
func (e BaseDomainEvent) EventType() string { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() string { return e.AggID }
func (e BaseDomainEvent) AggregateType() string { return e.AggType }
