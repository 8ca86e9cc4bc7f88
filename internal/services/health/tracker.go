// Package health keeps the outcome of the latest collection cycles for the /healthz endpoint.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/vshulcz/scbridge/internal/services/report"
)

type Status struct {
	LastCycle           time.Time `json:"last_cycle"`
	LastSuccess         time.Time `json:"last_success"`
	LastError           string    `json:"last_error,omitempty"`
	Cycles              uint64    `json:"cycles"`
	Failures            uint64    `json:"failures"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	FailedMessages      int64     `json:"failed_messages"`
	Endpoints           int       `json:"endpoints"`
	StaleEndpoints      int       `json:"stale_endpoints"`
	Samples             int       `json:"samples"`
}

// Healthy is true once a cycle has run and the latest one succeeded.
func (s Status) Healthy() bool {
	return s.Cycles > 0 && s.ConsecutiveFailures == 0
}

type Tracker struct {
	mu     sync.RWMutex
	status Status
}

var _ report.Observer = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Notify(_ context.Context, evt report.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Cycles++
	t.status.LastCycle = evt.Started
	if evt.Err != nil {
		t.status.Failures++
		t.status.ConsecutiveFailures++
		t.status.LastError = evt.Err.Error()
		return nil
	}
	t.status.ConsecutiveFailures = 0
	t.status.LastError = ""
	t.status.LastSuccess = evt.Started
	t.status.FailedMessages = evt.FailedMessages
	t.status.Endpoints = evt.Endpoints
	t.status.StaleEndpoints = evt.StaleEndpoints
	t.status.Samples = evt.Samples
	return nil
}

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
