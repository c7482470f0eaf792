package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FareFlex/internal/middleware"
	"FareFlex/internal/usecase"
	pkgch "FareFlex/pkg/clickhouse"
	"FareFlex/pkg/config"
	xhttp "FareFlex/pkg/http"
	pkgkafka "FareFlex/pkg/kafka"
	applogger "FareFlex/pkg/logger"
	"FareFlex/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	quotes     *usecase.QuoteService
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	pipeline   *middleware.TickPipeline
	spool      *queue.RedisQueue
	chClient   *pkgch.Client
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. Consumer, tick
// handler, pipeline, spool and the ClickHouse client may be nil when
// disabled by config.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	quotes *usecase.QuoteService,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	pipeline *middleware.TickPipeline,
	spool *queue.RedisQueue,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		quotes:   quotes,
		consumer: consumer,
		kh:       kh,
		pipeline: pipeline,
		spool:    spool,
		chClient: chClient,
		handler:  handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsLogging(a.log, 500*time.Millisecond),
	)

	// Start the audit retry spool if configured
	if a.spool != nil {
		if err := a.spool.Start(); err != nil {
			a.log.Warn("audit spool start error", applogger.Error(err))
		}
	}

	// Start market ticks consumer if configured
	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("pricing api listening", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	if a.spool != nil {
		if err := a.spool.Stop(shutdownCtx); err != nil {
			a.log.Warn("audit spool stop error", applogger.Error(err))
		}
	}

	// Close quote audit sinks (storage repo and publisher)
	if a.quotes != nil {
		a.quotes.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
