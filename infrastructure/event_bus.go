package infrastructure

import (
	"context"
	"sync"

	"wagerhub/application"
	"wagerhub/domain/events"

	log "github.com/sirupsen/logrus"
)

// EventHandler handles one domain event in-process
type EventHandler = application.EventHandler

// EventBus manages in-process subscriptions and dispatches events asynchronously
type EventBus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]EventHandler
	wg       sync.WaitGroup
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[events.EventType][]EventHandler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *EventBus) Subscribe(eventType events.EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit dispatches an event to every handler of its type without blocking the caller
func (b *EventBus) Emit(ctx context.Context, event events.Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h EventHandler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()

			if err := h(ctx, event); err != nil {
				log.WithFields(log.Fields{
					"eventType":    event.Type(),
					"handlerIndex": handlerIndex,
					"error":        err,
				}).Error("Event handler failed")
			}
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned
func (b *EventBus) Wait() {
	b.wg.Wait()
}
