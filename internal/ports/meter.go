package ports

// Meter creates pull-based gauge instruments. Each name is registered at most once;
// read is invoked by the exporter on its own schedule and must be safe for concurrent use.
type Meter interface {
	ObserveGauge(name, unit, description string, read func() float64) error
}

// MeterProvider builds the process-wide meter for a namespace.
type MeterProvider interface {
	Meter(name, version string) (Meter, error)
}
