package domain

// MetricKind enumerates the per-endpoint series reported by the monitoring API.
type MetricKind string

const (
	ProcessingTime MetricKind = "ProcessingTime"
	CriticalTime   MetricKind = "CriticalTime"
	QueueLength    MetricKind = "QueueLength"
	Retries        MetricKind = "Retries"
	Throughput     MetricKind = "Throughput"
)

type kindInfo struct {
	unit        string
	description string
}

var kindTable = map[MetricKind]kindInfo{
	ProcessingTime: {"ms", "Time it takes for an endpoint to successfully invoke all handlers and sagas for a single incoming message"},
	CriticalTime:   {"ms", "Time between when a message is sent and when it is fully processed."},
	QueueLength:    {"msg", "Number of messages in the main input queue of an endpoint."},
	Retries:        {"count", "Number of retries scheduled by the endpoint (immediate or delayed)."},
	Throughput:     {"msg/s", "Number of messages that the endpoint successfully processes per second."},
}

// Kinds returns every metric kind in publishing order.
func Kinds() []MetricKind {
	return []MetricKind{ProcessingTime, CriticalTime, QueueLength, Retries, Throughput}
}

// Unit is the fixed unit string exported with the kind's gauges.
func (k MetricKind) Unit() string { return kindTable[k].unit }

// Description is the fixed help text exported with the kind's gauges.
func (k MetricKind) Description() string { return kindTable[k].description }

// Valid reports whether k is one of the known kinds.
func (k MetricKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}
