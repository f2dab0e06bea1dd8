// internal/common/observability/observability.go
package observability

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"activity-signup/internal/common/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter

	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
}

type options struct {
	registerer promclient.Registerer
	processors []sdktrace.SpanProcessor
}

type Option func(*options)

// WithRegisterer sets where the Prometheus exporter registers its collector.
func WithRegisterer(r promclient.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithSpanProcessor adds a span processor next to the OTLP exporter.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.processors = append(o.processors, sp) }
}

// New installs global meter and tracer providers. Metrics are exposed through
// the Prometheus registry; spans go to the OTLP endpoint when one is configured.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Observability, error) {
	o := &options{registerer: promclient.DefaultRegisterer}
	for _, opt := range opts {
		opt(o)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.Observability.ServiceName),
		semconv.ServiceVersion(cfg.App.Version),
		semconv.DeploymentEnvironment(cfg.App.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(o.registerer))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Observability.SampleRatio))),
	}
	if cfg.Observability.OTLPEndpoint != "" {
		spanExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Observability.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(spanExporter))
	}
	for _, sp := range o.processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meter := mp.Meter(cfg.Observability.ServiceName)

	requestCounter, err := meter.Int64Counter(
		"activity_requests",
		otelmetric.WithDescription("Number of activity API requests served"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"activity_request_duration",
		otelmetric.WithDescription("Activity API request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:   mp,
		tracerProvider:  tp,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}, nil
}

// Tracer returns a tracer from the installed provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return o.tracerProvider.Tracer(name)
}

func (o *Observability) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	o.requestCounter.Add(ctx, 1, attrs)
	o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// Shutdown flushes pending spans and stops both providers.
func (o *Observability) Shutdown(ctx context.Context) error {
	return errors.Join(
		o.tracerProvider.Shutdown(ctx),
		o.meterProvider.Shutdown(ctx),
	)
}
