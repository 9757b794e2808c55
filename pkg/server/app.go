package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ChurnPull/internal/usecase"
	pkgch "ChurnPull/pkg/clickhouse"
	"ChurnPull/pkg/config"
	xhttp "ChurnPull/pkg/http"
	pkgkafka "ChurnPull/pkg/kafka"
	applogger "ChurnPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	predictor  *usecase.ChurnPredictor
	chClient   *pkgch.Client
}

// New creates a new App. consumer and chClient may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	predictor *usecase.ChurnPredictor,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		consumer:   consumer,
		predictor:  predictor,
		chClient:   chClient,
	}
}

// Run starts the application and blocks until interrupted or the HTTP
// server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			a.shutdown()
			return err
		}
	}

	errCh := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			runErr = err
		}
	}

	a.shutdown()
	return runErr
}

// shutdown stops intake first, then closes the sinks.
func (a *App) shutdown() {
	a.log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Publisher, prediction store and cache.
	a.predictor.Close()

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
