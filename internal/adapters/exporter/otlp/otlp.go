// Package otlp exports registry gauges as OpenTelemetry observable gauges pushed over OTLP/gRPC.
package otlp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
)

const defaultExportInterval = 60 * time.Second

// Config selects the collector endpoint and the resource identity.
type Config struct {
	Endpoint         string
	ServiceName      string
	ServiceVersion   string
	ServiceNamespace string
	InstanceID       string
	Interval         time.Duration
}

// Provider wraps an SDK MeterProvider.
type Provider struct {
	mp *sdkmetric.MeterProvider
}

var _ ports.MeterProvider = (*Provider)(nil)

// New dials nothing up front: the gRPC exporter connects lazily on the first export.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("%w: empty OTLP endpoint", domain.ErrInvalidArgument)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	exp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := NewResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewWithReader(res, sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))), nil
}

// NewWithReader builds a provider on an arbitrary reader, e.g. a ManualReader in tests.
func NewWithReader(res *resource.Resource, reader sdkmetric.Reader) *Provider {
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}
	return &Provider{mp: sdkmetric.NewMeterProvider(opts...)}
}

// NewResource describes this process with the service.* semantic conventions.
func NewResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.ServiceNamespace(cfg.ServiceNamespace),
			semconv.ServiceInstanceID(cfg.InstanceID),
		),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// Meter returns the named meter of the SDK provider.
func (p *Provider) Meter(name, version string) (ports.Meter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty meter name", domain.ErrInvalidArgument)
	}
	return &Meter{meter: p.mp.Meter(name, metric.WithInstrumentationVersion(version))}, nil
}

// Shutdown flushes pending exports and stops the reader.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

// Meter creates Float64ObservableGauges.
type Meter struct {
	meter metric.Meter
}

var _ ports.Meter = (*Meter)(nil)

// ObserveGauge registers a gauge whose callback runs on each collection.
// The SDK keeps and exports instruments with names outside its charset, so
// that error goes to the global OTel error handler instead of the caller.
func (m *Meter) ObserveGauge(name, unit, description string, read func() float64) error {
	if read == nil {
		return fmt.Errorf("%w: nil read callback for %q", domain.ErrInvalidArgument, name)
	}
	_, err := m.meter.Float64ObservableGauge(name,
		metric.WithUnit(unit),
		metric.WithDescription(description),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(read())
			return nil
		}),
	)
	if errors.Is(err, sdkmetric.ErrInstrumentName) {
		otel.Handle(err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("otel gauge %q: %w", name, err)
	}
	return nil
}
