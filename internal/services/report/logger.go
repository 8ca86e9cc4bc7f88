package report

import (
	"context"

	"go.uber.org/zap"
)

// Logger writes every cycle event to a zap logger: failures at warn, successes at debug.
type Logger struct {
	log *zap.Logger
}

var _ Observer = (*Logger)(nil)

func NewLogger(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{log: l}
}

func (l *Logger) Notify(_ context.Context, evt Event) error {
	fields := []zap.Field{
		zap.Time("started", evt.Started),
		zap.Duration("duration", evt.Duration),
		zap.Int64("failed_messages", evt.FailedMessages),
		zap.Int("endpoints", evt.Endpoints),
		zap.Int("stale_endpoints", evt.StaleEndpoints),
		zap.Int("samples", evt.Samples),
	}
	if evt.Err != nil {
		l.log.Warn("collection cycle failed", append(fields, zap.Error(evt.Err))...)
		return nil
	}
	l.log.Debug("collection cycle completed", fields...)
	return nil
}
