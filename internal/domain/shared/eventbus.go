package shared

import "context"

// EventHandler reacts to published events. EventTypes lists the types it
// wants; nil subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is what the application services depend on
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher that handlers can join and leave
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NopPublisher drops events. Services use it when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...DomainEvent) error { return nil }
