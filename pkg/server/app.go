package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pkgch "TradeCore/pkg/clickhouse"
	"TradeCore/pkg/config"
	xhttp "TradeCore/pkg/http"
	pkgkafka "TradeCore/pkg/kafka"
	applogger "TradeCore/pkg/logger"
)

// Runner is a long-lived component driven by the app lifecycle.
type Runner interface {
	Run(ctx context.Context) error
}

// Pipeline is the async sink worker started before the strategy loop.
type Pipeline interface {
	Start(ctx context.Context)
	Stop()
}

// App owns the process lifecycle: it starts the sink pipeline, the fills
// consumer, the HTTP surface, and the strategy loop, then tears everything
// down in reverse order on SIGINT/SIGTERM.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	strategy    Runner
	watcher     Runner
	pipeline    Pipeline
	consumer    *pkgkafka.Consumer
	fills       pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New assembles the app. watcher, consumer, fills, and chClient may be nil
// when the corresponding backends are not configured.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	strategy Runner,
	watcher Runner,
	pipeline Pipeline,
	consumer *pkgkafka.Consumer,
	fills pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		strategy:    strategy,
		watcher:     watcher,
		pipeline:    pipeline,
		consumer:    consumer,
		fills:       fills,
		chClient:    chClient,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	if a.consumer != nil && a.fills != nil {
		a.consumer.RegisterHandler(a.fills)
		a.consumer.WithConsumerHook(pkgkafka.NoopHook{})
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("fills consumer started", applogger.String("topic", a.fills.Topic()))
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Run(ctx); err != nil && err != context.Canceled {
				a.log.Warn("price watcher stopped", applogger.Error(err))
			}
		}()
	}

	strategyDone := make(chan struct{})
	go func() {
		defer close(strategyDone)
		if err := a.strategy.Run(ctx); err != nil && err != context.Canceled {
			a.log.Error("strategy loop error", applogger.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	<-strategyDone

	return a.shutdown()
}

// shutdown stops services in reverse start order.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
