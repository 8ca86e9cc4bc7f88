// Package fanout registers every gauge on several exporter backends at once.
package fanout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
)

// Provider combines meter providers.
type Provider struct {
	providers []ports.MeterProvider
}

var _ ports.MeterProvider = (*Provider)(nil)

// New skips nil providers.
func New(providers ...ports.MeterProvider) *Provider {
	ps := make([]ports.MeterProvider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Provider{providers: ps}
}

// Meter builds one meter per backend.
func (p *Provider) Meter(name, version string) (ports.Meter, error) {
	if len(p.providers) == 0 {
		return nil, fmt.Errorf("%w: no exporter configured", domain.ErrInvalidState)
	}
	meters := make([]ports.Meter, 0, len(p.providers))
	for _, mp := range p.providers {
		m, err := mp.Meter(name, version)
		if err != nil {
			return nil, err
		}
		meters = append(meters, m)
	}
	if len(meters) == 1 {
		return meters[0], nil
	}
	return &Meter{meters: meters, done: make(map[string][]bool)}, nil
}

// Meter registers on every backend. Backends that already accepted a name are
// skipped when a partially failed registration is retried.
type Meter struct {
	done   map[string][]bool
	meters []ports.Meter
	mu     sync.Mutex
}

var _ ports.Meter = (*Meter)(nil)

// ObserveGauge returns the joined errors of the backends that refused the gauge.
func (m *Meter) ObserveGauge(name, unit, description string, read func() float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	done, ok := m.done[name]
	if !ok {
		done = make([]bool, len(m.meters))
		m.done[name] = done
	}

	var errs []error
	for i, meter := range m.meters {
		if done[i] {
			continue
		}
		if err := meter.ObserveGauge(name, unit, description, read); err != nil {
			errs = append(errs, err)
			continue
		}
		done[i] = true
	}
	return errors.Join(errs...)
}
