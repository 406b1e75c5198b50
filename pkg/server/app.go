package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/repository"
	"github.com/Swigstan1810/Heights-sub002/internal/handler/api"
	"github.com/Swigstan1810/Heights-sub002/internal/service/providers"
	pkgch "github.com/Swigstan1810/Heights-sub002/pkg/clickhouse"
	"github.com/Swigstan1810/Heights-sub002/pkg/config"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
	applogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    *api.AssistantHandler
	stream     *providers.QuoteStream
	chClient   *pkgch.Client
	queryLog   repository.QueryLog
	events     repository.EventPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.AssistantHandler,
	stream *providers.QuoteStream,
	chClient *pkgch.Client,
	queryLog repository.QueryLog,
	events repository.EventPublisher,
) *App {
	return &App{
		cfg:      cfg,
		logger:   l,
		handler:  handler,
		stream:   stream,
		chClient: chClient,
		queryLog: queryLog,
		events:   events,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Quote stream warms the cache in the background; the assistant works
	// without it, just with colder quotes.
	if a.stream != nil {
		go a.stream.Run(ctx)
		a.logger.Info("quote stream started",
			applogger.Strings("symbols", a.cfg.Providers.Finnhub.StreamSymbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("assistant listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.logger.Warn("quote stream close error", applogger.Error(err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.queryLog != nil {
		if err := a.queryLog.Close(); err != nil {
			a.logger.Warn("query log close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
