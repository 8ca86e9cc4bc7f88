package ports

import (
	"context"

	"github.com/vshulcz/scbridge/internal/domain"
)

// FailureCounter reports the number of unresolved failed messages.
type FailureCounter interface {
	UnresolvedFailedMessages(ctx context.Context) (int64, error)
}

// EndpointSource lists monitored endpoints with their metric series.
type EndpointSource interface {
	Endpoints(ctx context.Context) ([]domain.Endpoint, error)
}
