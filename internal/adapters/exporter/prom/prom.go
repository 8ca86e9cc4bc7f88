// Package prom exposes registry gauges as Prometheus GaugeFuncs on a scrape handler.
package prom

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
)

// Provider owns the Prometheus registry all gauges are registered on.
type Provider struct {
	registry *prometheus.Registry
}

var _ ports.MeterProvider = (*Provider)(nil)

// NewProvider wraps registry, creating a fresh one when nil.
func NewProvider(registry *prometheus.Registry) *Provider {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Provider{registry: registry}
}

// Registry returns the underlying Prometheus registry.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }

// Meter returns a meter registering on the provider's registry. Prometheus has
// no instrumentation scope, so version is not exported.
func (p *Provider) Meter(name, _ string) (ports.Meter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty meter name", domain.ErrInvalidArgument)
	}
	return &Meter{registerer: p.registry}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Meter registers GaugeFuncs whose callback is evaluated on every scrape.
type Meter struct {
	registerer prometheus.Registerer
}

var _ ports.Meter = (*Meter)(nil)

// ObserveGauge registers a GaugeFunc named after the sanitized key.
func (m *Meter) ObserveGauge(name, unit, description string, read func() float64) error {
	if read == nil {
		return fmt.Errorf("%w: nil read callback for %q", domain.ErrInvalidArgument, name)
	}
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: MetricName(name),
		Help: helpText(description, unit),
	}, read)

	if err := m.registerer.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return fmt.Errorf("prometheus name %q for %q already taken: %w", MetricName(name), name, err)
		}
		return fmt.Errorf("prometheus register %q: %w", name, err)
	}
	return nil
}

// MetricName maps a gauge key onto the Prometheus name charset [a-zA-Z0-9_:].
func MetricName(key string) string {
	var sb strings.Builder
	sb.Grow(len(key) + 1)
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func helpText(description, unit string) string {
	switch {
	case unit == "":
		return description
	case description == "":
		return "Unit: " + unit + "."
	default:
		return description + " Unit: " + unit + "."
	}
}
