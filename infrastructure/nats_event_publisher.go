package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wagerhub/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "wagerhub"

// EventEnvelope wraps every event published outside the process
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher dispatches events to the local bus and, when a message
// publisher is configured, to NATS
type NATSEventPublisher struct {
	bus           *EventBus
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
}

// NewNATSEventPublisher creates a new event publisher; publisher may be nil for local-only delivery
func NewNATSEventPublisher(bus *EventBus, publisher MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		bus:           bus,
		publisher:     publisher,
		subjectMapper: subjectMapper,
	}
}

// Publish hands the event to local handlers, then publishes its envelope
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	p.bus.Emit(ctx, event)

	if p.publisher == nil {
		return nil
	}

	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.publisher.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// RegisterLocalHandler registers a handler invoked in-process for an event type
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler EventHandler) {
	p.bus.Subscribe(eventType, handler)
}
