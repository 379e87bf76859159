package infrastructure

import (
	"context"

	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher holds events until the unit of work commits
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewNATSTransactionalPublisher creates a new transactional publisher
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish queues the event
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events in order; a failed event does not block the rest
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	pending := p.pending
	p.pending = make([]events.Event, 0)

	for _, event := range pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	log.WithField("eventCount", len(pending)).Debug("Flushed pending events")
	return nil
}

// Discard clears all pending events without publishing them
func (p *NATSTransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	}
	p.pending = make([]events.Event, 0)
}

// Pending returns how many events wait for a flush
func (p *NATSTransactionalPublisher) Pending() int {
	return len(p.pending)
}
