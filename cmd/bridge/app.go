package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vshulcz/scbridge/internal/adapters/exporter/fanout"
	"github.com/vshulcz/scbridge/internal/adapters/exporter/otlp"
	"github.com/vshulcz/scbridge/internal/adapters/exporter/prom"
	"github.com/vshulcz/scbridge/internal/adapters/http/ginserver"
	"github.com/vshulcz/scbridge/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/scbridge/internal/adapters/servicecontrol"
	"github.com/vshulcz/scbridge/internal/config"
	"github.com/vshulcz/scbridge/internal/ports"
	"github.com/vshulcz/scbridge/internal/services/bridge"
	"github.com/vshulcz/scbridge/internal/services/gauges"
	"github.com/vshulcz/scbridge/internal/services/health"
	"github.com/vshulcz/scbridge/internal/services/report"
)

const shutdownTimeout = 5 * time.Second

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

type app struct {
	cfg     config.BridgeConfig
	log     *zap.Logger
	handler http.Handler
	svc     *bridge.Service
	otel    *otlp.Provider
}

func newApp(ctx context.Context, cfg config.BridgeConfig, logger *zap.Logger) (*app, error) {
	hc := &http.Client{Timeout: cfg.RequestTimeout}
	errorsAPI, err := servicecontrol.NewErrorsClient(cfg.ServiceControlURL, hc)
	if err != nil {
		return nil, fmt.Errorf("errors api client: %w", err)
	}
	monitoringAPI, err := servicecontrol.NewMonitoringClient(cfg.MonitoringURL, hc, cfg.MonitoringHistory)
	if err != nil {
		return nil, fmt.Errorf("monitoring api client: %w", err)
	}

	promProvider := prom.NewProvider(nil)
	providers := []ports.MeterProvider{promProvider}

	a := &app{cfg: cfg, log: logger}
	if cfg.OTLP.Enabled() {
		a.otel, err = otlp.New(ctx, otlp.Config{
			Endpoint:         cfg.OTLP.Endpoint,
			ServiceName:      cfg.OTLP.ServiceName,
			ServiceVersion:   cfg.OTLP.ServiceVersion,
			ServiceNamespace: cfg.OTLP.ServiceNamespace,
			InstanceID:       cfg.OTLP.InstanceID,
			Interval:         cfg.OTLP.ExportInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		providers = append(providers, a.otel)
		logger.Info("otlp export enabled",
			zap.String("endpoint", cfg.OTLP.Endpoint),
			zap.Duration("interval", cfg.OTLP.ExportInterval),
		)
	}

	registry := gauges.New()
	tracker := health.NewTracker()
	events := report.NewSubject(report.NewLogger(logger), tracker)
	events.SetErrorHandler(func(err error) {
		logger.Warn("cycle observer failed", zap.Error(err))
	})

	a.svc = bridge.New(cfg, fanout.New(providers...), registry, errorsAPI, monitoringAPI, logger,
		bridge.WithPublisher(events))

	gin.SetMode(gin.ReleaseMode)
	a.handler = ginserver.NewRouter(
		ginserver.NewHandler(registry, tracker, promProvider.Handler()),
		middlewares.ZapLogger(logger, "/metrics", "/healthz", "/ping"),
		middlewares.GzipResponse(),
	)
	return a, nil
}

func (a *app) listenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Address, err)
	}
	return a.run(ctx, ln)
}

// run serves HTTP on ln and runs the polling loop until ctx is done or either fails.
func (a *app) run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.svc.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown(srv)
	})
	return g.Wait()
}

func (a *app) shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otlp shutdown: %w", err))
		}
	}
	a.log.Info("bridge stopped")
	return errors.Join(errs...)
}
