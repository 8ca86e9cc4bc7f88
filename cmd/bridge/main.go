package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vshulcz/scbridge/internal/config"
	"github.com/vshulcz/scbridge/pkg/util"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := util.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}
	build.Print(os.Stdout)
	config.Version = build.VersionOr(config.Version)

	cfg, err := config.LoadBridgeConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init bridge", zap.Error(err))
	}
	if err := a.listenAndRun(ctx); err != nil {
		logger.Fatal("bridge failed", zap.Error(err))
	}
}
