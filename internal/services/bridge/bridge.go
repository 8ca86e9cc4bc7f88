// Package bridge implements the polling loop that republishes ServiceControl data as gauges.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/scbridge/internal/config"
	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/ports"
	"github.com/vshulcz/scbridge/internal/services/gauges"
	"github.com/vshulcz/scbridge/internal/services/report"
)

// Options holds the optional collaborators of a Service.
type Options struct {
	Publisher report.Publisher
	Now       func() time.Time
}

// Option configures a Service.
type Option func(*Options)

// WithPublisher sends cycle events to p instead of the default zap logging observer.
func WithPublisher(p report.Publisher) Option {
	return func(o *Options) {
		o.Publisher = p
	}
}

// WithClock replaces time.Now for measuring cycle start and duration.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// Service polls both upstream APIs every CollectionInterval and writes the results into the registry.
type Service struct {
	cfg       config.BridgeConfig
	provider  ports.MeterProvider
	registry  *gauges.Registry
	failures  ports.FailureCounter
	endpoints ports.EndpointSource
	log       *zap.Logger
	pub       report.Publisher
	now       func() time.Time
	failedKey string
}

// New builds a Service. A nil logger falls back to zap.NewNop.
func New(
	cfg config.BridgeConfig,
	provider ports.MeterProvider,
	registry *gauges.Registry,
	failures ports.FailureCounter,
	endpoints ports.EndpointSource,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := Options{Now: time.Now}
	for _, f := range opts {
		f(&o)
	}
	if o.Publisher == nil {
		o.Publisher = report.NewSubject(report.NewLogger(logger))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Service{
		cfg:       cfg,
		provider:  provider,
		registry:  registry,
		failures:  failures,
		endpoints: endpoints,
		log:       logger,
		pub:       o.Publisher,
		now:       o.Now,
		failedKey: domain.FailedMessagesKey(cfg.MeterName),
	}
}

// Run sets up the meter and the failed-messages gauge, then collects until ctx is done.
// It returns nil on cancellation and an error for setup failures or an invalid registry state.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.CollectionInterval <= 0 {
		return fmt.Errorf("%w: collection interval must be > 0, got %v", domain.ErrInvalidArgument, s.cfg.CollectionInterval)
	}
	if err := s.setup(); err != nil {
		return err
	}
	s.log.Info("bridge started",
		zap.String("meter", s.cfg.MeterName),
		zap.Duration("interval", s.cfg.CollectionInterval),
		zap.String("errors_api", s.cfg.ServiceControlURL),
		zap.String("monitoring_api", s.cfg.MonitoringURL),
	)

	timer := time.NewTimer(s.cfg.CollectionInterval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.collect(ctx); errors.Is(err, domain.ErrInvalidState) {
			s.log.Error("bridge stopped", zap.Error(err))
			return err
		}

		timer.Reset(s.cfg.CollectionInterval)
		select {
		case <-ctx.Done():
			s.log.Info("bridge stopping")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Service) setup() error {
	if s.provider == nil || s.registry == nil || s.failures == nil || s.endpoints == nil {
		return fmt.Errorf("%w: bridge is missing a dependency", domain.ErrInvalidArgument)
	}
	m, err := s.provider.Meter(s.cfg.MeterName, s.cfg.OTLP.ServiceVersion)
	if err != nil {
		return fmt.Errorf("create meter %q: %w", s.cfg.MeterName, err)
	}
	if err := s.registry.Bind(m); err != nil {
		return fmt.Errorf("bind meter: %w", err)
	}
	if _, err := s.registry.Ensure(s.failedKey, 0, domain.FailedMessagesUnit, domain.FailedMessagesDescription); err != nil {
		return fmt.Errorf("register failed messages gauge: %w", err)
	}
	return nil
}

// collect runs one cycle and publishes its outcome. A cycle aborted by
// cancellation reports nothing.
func (s *Service) collect(ctx context.Context) error {
	started := s.now()
	evt := report.Event{Started: started}
	err := s.cycle(ctx, &evt)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	evt.Duration = s.now().Sub(started)
	evt.Err = err
	s.pub.Publish(ctx, evt)
	return err
}

func (s *Service) cycle(ctx context.Context, evt *report.Event) error {
	n, err := s.failures.UnresolvedFailedMessages(ctx)
	if err != nil {
		return fmt.Errorf("get failed messages: %w", err)
	}
	if err := s.registry.Set(s.failedKey, float64(n)); err != nil {
		return err
	}
	evt.FailedMessages = n

	eps, err := s.endpoints.Endpoints(ctx)
	if err != nil {
		return fmt.Errorf("get monitored endpoints: %w", err)
	}
	evt.Endpoints = len(eps)

	var errs []error
	for _, ep := range eps {
		if strings.TrimSpace(ep.Name) == "" {
			s.log.Warn("skipping monitored endpoint without a name", zap.Int("series", len(ep.Series)))
			continue
		}
		if ep.IsStale {
			evt.StaleEndpoints++
			s.log.Debug("monitored endpoint is stale",
				zap.String("endpoint", ep.Name),
				zap.Int("connected", ep.ConnectedCount),
				zap.Int("disconnected", ep.DisconnectedCount),
			)
		}
		for _, smp := range domain.EndpointSamples(ep) {
			if err := s.registry.Publish(smp); err != nil {
				if errors.Is(err, domain.ErrInvalidState) {
					return err
				}
				errs = append(errs, fmt.Errorf("publish %s: %w", smp.Key, err))
				continue
			}
			evt.Samples++
		}
	}
	return errors.Join(errs...)
}
