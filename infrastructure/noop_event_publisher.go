package infrastructure

import (
	"wagerhub/domain/events"
)

// NoopEventPublisher drops every event; used by CLI commands that run without handlers
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(events.Event) error {
	return nil
}
