package infrastructure

import (
	"context"
	"errors"
	"testing"

	"wagerhub/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	first := events.WagerCreatedEvent{WagerID: 1, UserID: 10, OpponentID: 20, Amount: 100}
	second := events.WagerStateChangeEvent{WagerID: 1, OldState: "pending", NewState: "accepted"}

	require.NoError(t, publisher.Publish(first))
	require.NoError(t, publisher.Publish(second))
	assert.Empty(t, mockPublisher.PublishedEvents, "events wait for the flush")
	assert.Equal(t, 2, publisher.Pending())

	require.NoError(t, publisher.Flush(context.Background()))
	require.Len(t, mockPublisher.PublishedEvents, 2)
	assert.Equal(t, first, mockPublisher.PublishedEvents[0])
	assert.Equal(t, second, mockPublisher.PublishedEvents[1])
	assert.Zero(t, publisher.Pending())
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, publisher.Publish(events.TokenRateChangedEvent{SetBy: 1}))
	publisher.Discard()
	require.NoError(t, publisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushSurvivesPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	publisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, publisher.Publish(events.UserRegisteredEvent{UserID: 1}))
	assert.NoError(t, publisher.Flush(context.Background()))
	assert.Zero(t, publisher.Pending())
}
