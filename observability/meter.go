package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apikit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the dispatch engine and the
// transport middleware.
type Metrics struct {
	dispatchTotal     metric.Int64Counter
	dispatchDuration  metric.Float64Histogram
	dispatchActive    metric.Int64UpDownCounter
	transportTotal    metric.Int64Counter
	transportDuration metric.Float64Histogram
	failureTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("apiclient.dispatch.total",
		metric.WithDescription("Dispatched calls by client, stub mode and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiclient.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("apiclient.dispatch.duration",
		metric.WithDescription("Time from dispatch to terminal outcome in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiclient.dispatch.duration histogram: %w", err)
	}

	dispatchActive, err := meter.Int64UpDownCounter("apiclient.dispatch.active",
		metric.WithDescription("Calls that have not reached a terminal outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiclient.dispatch.active gauge: %w", err)
	}

	transportTotal, err := meter.Int64Counter("httpclient.request.total",
		metric.WithDescription("Outbound HTTP exchanges by method and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating httpclient.request.total counter: %w", err)
	}

	transportDuration, err := meter.Float64Histogram("httpclient.request.duration",
		metric.WithDescription("Outbound HTTP exchange duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating httpclient.request.duration histogram: %w", err)
	}

	failureTotal, err := meter.Int64Counter("apiclient.failure.total",
		metric.WithDescription("Failures by kind and client"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiclient.failure.total counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:     dispatchTotal,
		dispatchDuration:  dispatchDuration,
		dispatchActive:    dispatchActive,
		transportTotal:    transportTotal,
		transportDuration: transportDuration,
		failureTotal:      failureTotal,
	}, nil
}

// RecordDispatchStart increments the in-flight dispatch count.
func (m *Metrics) RecordDispatchStart(ctx context.Context) {
	m.dispatchActive.Add(ctx, 1)
}

// RecordDispatchEnd decrements in-flight dispatches and records the outcome.
func (m *Metrics) RecordDispatchEnd(ctx context.Context, client, stub, outcome string, duration time.Duration) {
	m.dispatchActive.Add(ctx, -1)
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client", client),
		attribute.String("stub", stub),
		attribute.String("outcome", outcome),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("client", client),
		attribute.String("stub", stub),
	))
}

// RecordTransport records one outbound HTTP exchange. statusClass is "2xx",
// "4xx", ... or "error" when no response was received.
func (m *Metrics) RecordTransport(ctx context.Context, method, statusClass string, duration time.Duration) {
	m.transportTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", statusClass),
	))
	m.transportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
}

// RecordFailure records a failure by kind and client.
func (m *Metrics) RecordFailure(ctx context.Context, kind, client string) {
	m.failureTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("client", client),
	))
}
