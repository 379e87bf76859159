package observability

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(MetricsConfig{Enabled: true, Environment: "test"})
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func sumPoints(t *testing.T, m metricdata.Metrics) []metricdata.DataPoint[int64] {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	return sum.DataPoints
}

func TestMetricsProvider_RecordHTTPRequest(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordHTTPRequest(http.MethodGet, "/api/p2p/wager/:id", http.StatusOK, 20*time.Millisecond)
	mp.RecordHTTPRequest(http.MethodGet, "/api/p2p/wager/:id", http.StatusOK, 30*time.Millisecond)
	mp.RecordHTTPRequest(http.MethodPost, "/api/auth/login", http.StatusTooManyRequests, time.Millisecond)

	metrics := collect(t, reader)
	points := sumPoints(t, metrics[HTTPRequestsTotal])
	require.Len(t, points, 2)

	for _, p := range points {
		route, _ := p.Attributes.Value(LabelRoute)
		status, _ := p.Attributes.Value(LabelStatus)
		switch route.AsString() {
		case "/api/p2p/wager/:id":
			assert.Equal(t, int64(2), p.Value)
			assert.Equal(t, "200", status.AsString())
		case "/api/auth/login":
			assert.Equal(t, int64(1), p.Value)
			assert.Equal(t, "429", status.AsString())
		default:
			t.Fatalf("unexpected route %q", route.AsString())
		}
	}

	hist, ok := metrics[HTTPRequestDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, p := range hist.DataPoints {
		count += p.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestMetricsProvider_RecordPaymentAndWagers(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordPayment("deposit", "stripe", "completed")
	mp.RecordPayment("deposit", "stripe", "completed")
	mp.RecordPayment("withdrawal", "paypal", "failed")
	mp.RecordWagerSettled(150)
	mp.RecordWagerSettled(50)

	metrics := collect(t, reader)

	payments := sumPoints(t, metrics[PaymentsTotal])
	require.Len(t, payments, 2)
	want := attribute.NewSet(
		attribute.String(LabelType, "deposit"),
		attribute.String(LabelProvider, "stripe"),
		attribute.String(LabelOutcome, "completed"),
	)
	var found bool
	for _, p := range payments {
		if p.Attributes.Equals(&want) {
			found = true
			assert.Equal(t, int64(2), p.Value)
		}
	}
	assert.True(t, found, "completed stripe deposits not recorded")

	settled := sumPoints(t, metrics[WagersSettledTotal])
	require.Len(t, settled, 1)
	assert.Equal(t, int64(2), settled[0].Value)

	tokens := sumPoints(t, metrics[WagerTokensSettledTotal])
	require.Len(t, tokens, 1)
	assert.Equal(t, int64(200), tokens[0].Value)
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	mp := NewMetricsProvider(MetricsConfig{Enabled: false})
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		mp.RecordPayment("deposit", "stripe", "completed")
		mp.RecordWagerSettled(10)
	})

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() { nilProvider.RecordWagerSettled(10) })
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	mp := NewMetricsProvider(MetricsConfig{Enabled: true, ExporterType: "carrier-pigeon"})
	err := mp.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter type")
}

func TestMetricsProvider_StopsRecordingAfterShutdown(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(MetricsConfig{Enabled: true})
	require.NoError(t, mp.InitializeWithReader(reader))
	require.NoError(t, mp.Shutdown(context.Background()))

	assert.NotPanics(t, func() { mp.RecordPayment("deposit", "stripe", "completed") })
}
