// Package gauges keeps the create-once, update-many mapping from gauge keys to exported instruments.
package gauges

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
)

// Entry is the value cell behind one registered instrument.
type Entry struct {
	key         string
	unit        string
	description string
	bits        atomic.Uint64
}

// Key returns the normalized gauge key.
func (e *Entry) Key() string { return e.key }

// Unit returns the unit the instrument was registered with.
func (e *Entry) Unit() string { return e.unit }

// Description returns the help text the instrument was registered with.
func (e *Entry) Description() string { return e.description }

// Value returns the current value. It is the instrument's read callback.
func (e *Entry) Value() float64 {
	return math.Float64frombits(e.bits.Load())
}

func (e *Entry) set(v float64) {
	e.bits.Store(math.Float64bits(v))
}

// Registry maps normalized keys to entries. Entries are never removed.
// Writes come from the polling loop; reads may come from any goroutine.
type Registry struct {
	meter   ports.Meter
	entries map[string]*Entry
	// pending holds entries whose registration failed. A backend may have kept
	// the read callback anyway, so a retry reuses the same cell.
	pending map[string]*Entry
	mu      sync.RWMutex
	// create serializes instrument registration so each key hits the meter once.
	create sync.Mutex
}

// New returns an empty registry without a meter; call Bind before Ensure.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		pending: make(map[string]*Entry),
	}
}

// Bind attaches the meter instruments are created on. It may be called once.
func (r *Registry) Bind(m ports.Meter) error {
	if m == nil {
		return fmt.Errorf("%w: nil meter", domain.ErrInvalidState)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meter != nil {
		return fmt.Errorf("%w: meter already bound", domain.ErrInvalidState)
	}
	r.meter = m
	return nil
}

// Ensure returns the entry for key, registering an instrument on first sight.
// The initial value is only written when the entry is created; unit and
// description of a repeat call are ignored.
func (r *Registry) Ensure(key string, initial float64, unit, description string) (*Entry, error) {
	k := domain.NormalizeKey(key)

	r.mu.RLock()
	e, ok := r.entries[k]
	meter := r.meter
	r.mu.RUnlock()
	if ok {
		return e, nil
	}
	if meter == nil {
		return nil, fmt.Errorf("%w: ensure %q before meter is bound", domain.ErrInvalidState, k)
	}

	r.create.Lock()
	defer r.create.Unlock()
	r.mu.RLock()
	e, ok = r.entries[k]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	e, retry := r.pending[k]
	if !retry {
		e = &Entry{key: k, unit: unit, description: description}
	}
	e.set(initial)

	if err := meter.ObserveGauge(e.key, e.unit, e.description, e.Value); err != nil {
		r.pending[k] = e
		return nil, fmt.Errorf("register gauge %q: %w", k, err)
	}
	delete(r.pending, k)

	r.mu.Lock()
	r.entries[k] = e
	r.mu.Unlock()
	return e, nil
}

// Set updates the value of an ensured key.
func (r *Registry) Set(key string, value float64) error {
	k := domain.NormalizeKey(key)
	r.mu.RLock()
	e, ok := r.entries[k]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotRegistered, k)
	}
	e.set(value)
	return nil
}

// Publish ensures the sample's gauge exists and writes its value.
func (r *Registry) Publish(s domain.Sample) error {
	e, err := r.Ensure(s.Key, s.Value, s.Unit, s.Description)
	if err != nil {
		return err
	}
	e.set(s.Value)
	return nil
}

// Lookup returns the entry registered under key.
func (r *Registry) Lookup(key string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[domain.NormalizeKey(key)]
	return e, ok
}

// Value returns the current value for key.
func (r *Registry) Value(key string) (float64, bool) {
	r.mu.RLock()
	e, ok := r.entries[domain.NormalizeKey(key)]
	r.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return e.Value(), true
}

// Snapshot copies all current values.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.RLock()
	entries := maps.Clone(r.entries)
	r.mu.RUnlock()

	out := make(map[string]float64, len(entries))
	for k, e := range entries {
		out[k] = e.Value()
	}
	return out
}

// Entries returns all entries ordered by key.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.key, b.key) })
	return out
}

// Len reports how many gauges have been registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
