// Package otel exports the engine's counters to an OTEL Collector over OTLP/gRPC.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "tabwarden"
	serviceVersion = "1.0.0"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
	Interval time.Duration // export period; 0 uses the SDK default
}

// Exporter records engine counters on an OTEL meter provider.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	flushesTotal  metric.Int64Counter
	distractionMs metric.Int64Counter
	advisoryTotal metric.Int64Counter
	pointsDelta   metric.Int64Counter
	nudgesTotal   metric.Int64Counter
}

// NewExporter creates an OTLP/gRPC metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// newExporter registers the instruments on provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)
	e := &Exporter{provider: provider}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&e.flushesTotal, "tabwarden_sessions_flushed_total", "Distraction sessions committed to stats", "{session}"},
		{&e.distractionMs, "tabwarden_distraction_ms_total", "Distraction time committed to stats", "ms"},
		{&e.advisoryTotal, "tabwarden_advisories_total", "Advisories emitted by the rule engine", "{advisory}"},
		{&e.pointsDelta, "tabwarden_points_delta_total", "Absolute points moved by advisories", "{point}"},
		{&e.nudgesTotal, "tabwarden_nudges_total", "Nudges emitted, by producing stage", "{nudge}"},
	}
	for _, c := range counters {
		ctr, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", c.name, err)
		}
		*c.dst = ctr
	}
	return e, nil
}

// RecordFlush counts one committed distraction session.
func (e *Exporter) RecordFlush(ctx context.Context, domain string, durationMs int64) {
	opt := metric.WithAttributes(attribute.String("domain", domain))
	e.flushesTotal.Add(ctx, 1, opt)
	e.distractionMs.Add(ctx, durationMs, opt)
}

// RecordAdvisory counts one advisory and the points it moved.
func (e *Exporter) RecordAdvisory(ctx context.Context, kind string, points int) {
	opt := metric.WithAttributes(attribute.String("kind", kind))
	e.advisoryTotal.Add(ctx, 1, opt)
	if points < 0 {
		points = -points
	}
	if points > 0 {
		e.pointsDelta.Add(ctx, int64(points), opt)
	}
}

// RecordNudge counts one nudge by source stage.
func (e *Exporter) RecordNudge(ctx context.Context, source string) {
	e.nudgesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
