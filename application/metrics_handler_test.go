package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"wagerhub/application"
	"wagerhub/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentRecord struct {
	txType   string
	provider string
	outcome  string
}

// fakeMetrics keeps whatever is recorded so tests can assert on it
type fakeMetrics struct {
	mu       sync.Mutex
	payments []paymentRecord
	settled  []int64
}

func (f *fakeMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}

func (f *fakeMetrics) RecordPayment(txType, provider, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, paymentRecord{txType: txType, provider: provider, outcome: outcome})
}

func (f *fakeMetrics) RecordWagerSettled(amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, amount)
}

func (f *fakeMetrics) paymentOutcomes() []paymentRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]paymentRecord(nil), f.payments...)
}

func TestMetricsHandler_WagerCompleted(t *testing.T) {
	metrics := &fakeMetrics{}
	handler := application.NewMetricsHandler(metrics)

	require.NoError(t, handler.HandleWagerCompleted(context.Background(), events.WagerCompletedEvent{WagerID: 1, Amount: 250}))
	require.NoError(t, handler.HandleWagerCompleted(context.Background(), events.WagerCompletedEvent{WagerID: 2, Amount: 75}))
	assert.Equal(t, []int64{250, 75}, metrics.settled)

	err := handler.HandleWagerCompleted(context.Background(), events.WagerCreatedEvent{WagerID: 3})
	assert.Error(t, err)
	assert.Len(t, metrics.settled, 2)
}

func TestRegisterMetricsSubscriptions(t *testing.T) {
	subscriber := &recordingSubscriber{registered: map[events.EventType]int{}}
	application.RegisterMetricsSubscriptions(subscriber, &fakeMetrics{})

	assert.Equal(t, map[events.EventType]int{events.EventTypeWagerCompleted: 1}, subscriber.registered)
}
