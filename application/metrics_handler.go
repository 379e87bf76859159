package application

import (
	"context"

	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"
)

// MetricsHandler counts committed wager settlements
type MetricsHandler struct {
	metrics interfaces.Metrics
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics interfaces.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// HandleWagerCompleted records the settled stake
func (h *MetricsHandler) HandleWagerCompleted(_ context.Context, event events.Event) error {
	e, err := AssertEventType[events.WagerCompletedEvent](event)
	if err != nil {
		return err
	}
	h.metrics.RecordWagerSettled(e.Amount)
	return nil
}

// RegisterMetricsSubscriptions wires the metrics handler to the event bus
func RegisterMetricsSubscriptions(subscriber EventSubscriber, metrics interfaces.Metrics) {
	h := NewMetricsHandler(metrics)
	subscriber.RegisterLocalHandler(events.EventTypeWagerCompleted, h.HandleWagerCompleted)
}
