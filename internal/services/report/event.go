package report

import "time"

// Event describes the outcome of one collection cycle.
type Event struct {
	Started        time.Time
	Err            error
	Duration       time.Duration
	FailedMessages int64
	Endpoints      int
	StaleEndpoints int
	Samples        int
}

// OK reports whether the cycle finished without errors.
func (e Event) OK() bool {
	return e.Err == nil
}
