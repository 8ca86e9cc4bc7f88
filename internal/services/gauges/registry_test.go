package gauges

import (
	"errors"
	"sync"
	"testing"

	"github.com/vshulcz/scbridge/internal/domain"
)

type registration struct {
	name        string
	unit        string
	description string
	read        func() float64
}

type fakeMeter struct {
	mu      sync.Mutex
	regs    []registration
	failFor map[string]error
}

func (m *fakeMeter) ObserveGauge(name, unit, description string, read func() float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[name]; err != nil {
		return err
	}
	m.regs = append(m.regs, registration{name: name, unit: unit, description: description, read: read})
	return nil
}

func (m *fakeMeter) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.regs {
		if r.name == name {
			n++
		}
	}
	return n
}

func (m *fakeMeter) read(name string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regs {
		if r.name == name {
			return r.read(), true
		}
	}
	return 0, false
}

func newBound(t *testing.T) (*Registry, *fakeMeter) {
	t.Helper()
	m := &fakeMeter{}
	r := New()
	if err := r.Bind(m); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return r, m
}

func TestRegistry_EnsureBeforeBind(t *testing.T) {
	r := New()
	_, err := r.Ensure("a.b", 1, "ms", "d")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err=%v want ErrInvalidState", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len=%d want 0", r.Len())
	}
}

func TestRegistry_Bind(t *testing.T) {
	r := New()
	if err := r.Bind(nil); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Bind(nil) err=%v", err)
	}
	if err := r.Bind(&fakeMeter{}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Bind(&fakeMeter{}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second Bind err=%v", err)
	}
}

func TestRegistry_EnsureCreatesOnce(t *testing.T) {
	r, m := newBound(t)

	e1, err := r.Ensure("OrderService.ProcessingTime", 5, "ms", "first")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	e2, err := r.Ensure("orderservice.processingtime", 99, "s", "second")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if e1 != e2 {
		t.Fatal("case variants must resolve to the same entry")
	}
	if got := m.count("orderservice.processingtime"); got != 1 {
		t.Fatalf("registrations=%d want 1", got)
	}
	if e1.Value() != 5 {
		t.Fatalf("repeat Ensure changed value: %v", e1.Value())
	}
	if e1.Unit() != "ms" || e1.Description() != "first" {
		t.Fatalf("repeat Ensure changed metadata: %q %q", e1.Unit(), e1.Description())
	}
}

func TestRegistry_SetUnknownKey(t *testing.T) {
	r, _ := newBound(t)
	err := r.Set("missing", 1)
	if !errors.Is(err, domain.ErrNotRegistered) || !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err=%v want ErrNotRegistered", err)
	}
}

func TestRegistry_CallbackReadsLatestWrite(t *testing.T) {
	r, m := newBound(t)
	if _, err := r.Ensure("sales.retries", 0, "count", "d"); err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{1, 2.5, 0, 42} {
		if err := r.Set("Sales.Retries", v); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, ok := m.read("sales.retries")
		if !ok || got != v {
			t.Fatalf("callback read (%v,%v) want %v", got, ok, v)
		}
	}
}

func TestRegistry_PublishSequence(t *testing.T) {
	r, m := newBound(t)
	cycles := [][]domain.Sample{
		{{Key: "a.x", Value: 1}, {Key: "b.x", Value: 2}},
		{{Key: "a.x", Value: 3}},
		{{Key: "A.X", Value: 4}, {Key: "b.x", Value: 5}},
	}
	for _, cycle := range cycles {
		for _, s := range cycle {
			if err := r.Publish(s); err != nil {
				t.Fatalf("Publish: %v", err)
			}
		}
	}
	if m.count("a.x") != 1 || m.count("b.x") != 1 {
		t.Fatalf("registrations a=%d b=%d want 1 each", m.count("a.x"), m.count("b.x"))
	}
	want := map[string]float64{"a.x": 4, "b.x": 5}
	snap := r.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("snapshot=%v", snap)
	}
	for k, v := range want {
		if snap[k] != v {
			t.Errorf("%s=%v want %v", k, snap[k], v)
		}
	}
}

func TestRegistry_MeterErrorLeavesKeyUnseen(t *testing.T) {
	boom := errors.New("duplicate descriptor")
	m := &fakeMeter{failFor: map[string]error{"bad.key": boom}}
	r := New()
	if err := r.Bind(m); err != nil {
		t.Fatal(err)
	}

	if err := r.Publish(domain.Sample{Key: "bad.key", Value: 1}); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
	if _, ok := r.Value("bad.key"); ok {
		t.Fatal("failed registration must not store an entry")
	}

	delete(m.failFor, "bad.key")
	if err := r.Publish(domain.Sample{Key: "bad.key", Value: 2}); err != nil {
		t.Fatalf("retry Publish: %v", err)
	}
	if v, ok := r.Value("bad.key"); !ok || v != 2 {
		t.Fatalf("Value=(%v,%v) want (2,true)", v, ok)
	}
}

// keepingMeter keeps every callback it is given, even when it reports an error.
type keepingMeter struct {
	reads []func() float64
	err   error
}

func (m *keepingMeter) ObserveGauge(_, _, _ string, read func() float64) error {
	m.reads = append(m.reads, read)
	return m.err
}

func TestRegistry_RetryReusesRefusedCell(t *testing.T) {
	m := &keepingMeter{err: errors.New("invalid instrument name")}
	r := New()
	if err := r.Bind(m); err != nil {
		t.Fatal(err)
	}

	for _, v := range []float64{10, 20} {
		if err := r.Publish(domain.Sample{Key: "Sales Orders.ProcessingTime", Value: v}); err == nil {
			t.Fatalf("Publish(%v) must fail while the meter refuses", v)
		}
	}
	m.err = nil
	if err := r.Publish(domain.Sample{Key: "sales orders.processingtime", Value: 30}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(m.reads) != 3 {
		t.Fatalf("meter saw %d registrations, want 3", len(m.reads))
	}
	for i, read := range m.reads {
		if got := read(); got != 30 {
			t.Errorf("callback %d reads %v, want 30", i, got)
		}
	}
}

func TestRegistry_Entries_Sorted(t *testing.T) {
	r, _ := newBound(t)
	for _, k := range []string{"c", "a", "b"} {
		if _, err := r.Ensure(k, 0, "", ""); err != nil {
			t.Fatal(err)
		}
	}
	es := r.Entries()
	if len(es) != 3 || es[0].Key() != "a" || es[1].Key() != "b" || es[2].Key() != "c" {
		t.Fatalf("unexpected order: %v %v %v", es[0].Key(), es[1].Key(), es[2].Key())
	}
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r, m := newBound(t)
	if _, err := r.Ensure("hot.key", 0, "", ""); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = m.read("hot.key")
					_ = r.Snapshot()
				}
			}
		}()
	}

	for i := range 1000 {
		if err := r.Publish(domain.Sample{Key: "hot.key", Value: float64(i)}); err != nil {
			t.Fatal(err)
		}
		if err := r.Publish(domain.Sample{Key: "k." + string(rune('a'+i%26)), Value: float64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	close(stop)
	wg.Wait()

	if v, _ := r.Value("hot.key"); v != 999 {
		t.Fatalf("hot.key=%v want 999", v)
	}
	if r.Len() != 27 {
		t.Fatalf("Len=%d want 27", r.Len())
	}
}

func TestRegistry_ConcurrentEnsureRegistersOnce(t *testing.T) {
	r, m := newBound(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Ensure("Shared.Key", 1, "", ""); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := m.count("shared.key"); n != 1 {
		t.Fatalf("ObserveGauge called %d times, want 1", n)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r, _ := newBound(t)
	if _, err := r.Ensure("Sales.QueueLength", 4, "msg", "d"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	e, ok := r.Lookup("SALES.queuelength")
	if !ok || e.Key() != "sales.queuelength" || e.Value() != 4 {
		t.Fatalf("Lookup=%v,%v", e, ok)
	}
	if _, ok := r.Lookup("sales.retries"); ok {
		t.Fatal("unknown key must not be found")
	}
}
