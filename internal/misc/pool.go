package misc

import "sync"

// Resetter is implemented by values that can be cleared for reuse.
type Resetter interface {
	Reset()
}

// Pool is a typed sync.Pool that resets values on Put.
type Pool[T Resetter] struct {
	p       sync.Pool
	discard func(T) bool
}

// PoolOption configures a Pool.
type PoolOption[T Resetter] func(*Pool[T])

// WithDiscard drops values for which drop returns true instead of pooling them,
// e.g. buffers that grew past a size limit.
func WithDiscard[T Resetter](drop func(T) bool) PoolOption[T] {
	return func(p *Pool[T]) {
		p.discard = drop
	}
}

// NewPool creates a Pool whose empty slots are filled by newFn.
func NewPool[T Resetter](newFn func() T, opts ...PoolOption[T]) *Pool[T] {
	pl := &Pool[T]{}
	pl.p.New = func() any {
		if newFn != nil {
			return newFn()
		}
		var zero T
		return zero
	}
	for _, o := range opts {
		o(pl)
	}
	return pl
}

// Get returns a pooled or freshly created value.
func (pl *Pool[T]) Get() T {
	if value, ok := pl.p.Get().(T); ok {
		return value
	}
	var zero T
	return zero
}

// Put resets v and returns it to the pool unless the discard rule rejects it.
func (pl *Pool[T]) Put(v T) {
	if pl.discard != nil && pl.discard(v) {
		return
	}
	v.Reset()
	pl.p.Put(v)
}
