package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsConfig selects whether and where metrics are exported
type MetricsConfig struct {
	Enabled        bool
	ServiceName    string
	Environment    string
	ExporterType   string // "console", "otlp" or "none"
	OTLPEndpoint   string
	ExportInterval time.Duration
}

// MetricsProvider manages the OpenTelemetry instruments of the platform.
// Every Record method is a no-op until Initialize succeeds with metrics enabled.
type MetricsProvider struct {
	config        MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	enabled       bool
	mu            sync.RWMutex

	httpRequestsCounter       metric.Int64Counter
	httpRequestDurationHist   metric.Float64Histogram
	paymentsCounter           metric.Int64Counter
	wagersSettledCounter      metric.Int64Counter
	wagerTokensSettledCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg MetricsConfig) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// Initialize builds the exporter named by the config and registers the
// provider globally
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.Enabled {
		log.Info("OpenTelemetry metrics disabled")
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.ExporterType {
	case ExporterConsole:
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case ExporterOTLP:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTLPEndpoint).Info("Using OTLP metric exporter")

	case ExporterNone, "":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.ExporterType)
	}

	interval := mp.config.ExportInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if err := mp.InitializeWithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)
	return nil
}

// InitializeWithReader creates the instruments on a meter provider fed by reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.enabled {
		return nil
	}

	serviceName := mp.config.ServiceName
	if serviceName == "" {
		serviceName = MetricPrefix
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter(serviceName)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.httpRequestsCounter, err = mp.meter.Int64Counter(
		HTTPRequestsTotal,
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP requests counter: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	mp.paymentsCounter, err = mp.meter.Int64Counter(
		PaymentsTotal,
		metric.WithDescription("Deposits and withdrawals by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payments counter: %w", err)
	}

	mp.wagersSettledCounter, err = mp.meter.Int64Counter(
		WagersSettledTotal,
		metric.WithDescription("Total number of settled wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers settled counter: %w", err)
	}

	mp.wagerTokensSettledCounter, err = mp.meter.Int64Counter(
		WagerTokensSettledTotal,
		metric.WithDescription("Tokens moved by settled wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wager tokens counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.enabled = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordHTTPRequest records a served request. route is the matched route
// pattern, not the raw path.
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordPayment records the outcome of a deposit or withdrawal
func (mp *MetricsProvider) RecordPayment(txType, provider, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.paymentsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, txType),
			attribute.String(LabelProvider, provider),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordWagerSettled records a completed wager and the tokens it moved
func (mp *MetricsProvider) RecordWagerSettled(amount int64) {
	if !mp.isEnabled() {
		return
	}

	mp.wagersSettledCounter.Add(context.Background(), 1)
	mp.wagerTokensSettledCounter.Add(context.Background(), amount)
}

func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.enabled
}
