// Package serverapp wires configuration, logging, observability, and the
// HTTP server into one startable application.
package serverapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"stitchql/internal/config"
	"stitchql/internal/gateway"
	"stitchql/internal/logging"
	"stitchql/internal/merge"
	"stitchql/internal/observability"
)

// App is the assembled gateway application.
type App struct {
	cfg    *config.Config
	logger *logging.Logger
	server *http.Server

	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	loggerProvider *observability.LoggerProvider
}

// InitLogger builds the structured logger, including the OTLP export
// pipeline when log exports are enabled. The returned provider is nil when
// exports are off.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	var provider *observability.LoggerProvider
	logCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	if cfg.Observability.Logging.ExportsEnabled {
		p, err := observability.InitLoggerProvider(otelConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize log export: %w", err)
		}
		provider = p
		logCfg.LoggerProvider = p.Provider()
	}
	return logging.NewLogger(logCfg), provider, nil
}

// New assembles the application around a merged schema.
func New(cfg *config.Config, logger *logging.Logger, schema *merge.Schema) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	var metrics *observability.GraphQLMetrics
	if cfg.Observability.MetricsEnabled {
		m, err := observability.NewGraphQLMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create request metrics: %w", err)
		}
		metrics = m
	}

	g := gateway.New(schema, logger, cfg.Server.RequestTimeout, cfg.Server.GraphiQLEnabled)
	handler := gateway.BuildHandler(cfg, g, logger, metrics)
	app.server = gateway.NewServer(cfg, handler)
	return app, nil
}

// AttachLoggerProvider hands the log export pipeline to the app so Shutdown
// flushes it.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.loggerProvider = provider
}

// Init starts the observability providers configuration enables.
func (a *App) Init(ctx context.Context) error {
	if a.cfg.Observability.MetricsEnabled {
		provider, err := observability.InitMeterProvider(otelConfig(a.cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		a.meterProvider = provider
	}
	if a.cfg.Observability.TracingEnabled {
		provider, err := observability.InitTracerProvider(otelConfig(a.cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.tracerProvider = provider
	}
	return nil
}

// Start runs the HTTP server in the background and returns its error
// channel.
func (a *App) Start() (<-chan error, error) {
	errs := make(chan error, 1)
	a.logger.Info("server starting",
		slog.String("addr", a.server.Addr),
		slog.Bool("graphiql", a.cfg.Server.GraphiQLEnabled),
	)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	return errs, nil
}

// WaitForStop blocks until a shutdown signal arrives or the server fails.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) (os.Signal, error) {
	select {
	case sig := <-stop:
		a.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		return sig, nil
	case err := <-serverErrors:
		if err != nil {
			return nil, fmt.Errorf("server failed: %w", err)
		}
		return nil, nil
	}
}

// Shutdown stops the HTTP server and flushes observability providers.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.loggerProvider != nil {
		if err := a.loggerProvider.Shutdown(ctx, a.logger.Logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func otelConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLP: observability.OTLPConfig{
			Endpoint: cfg.Observability.OTLP.Endpoint,
			Protocol: cfg.Observability.OTLP.Protocol,
			Insecure: cfg.Observability.OTLP.Insecure,
			Timeout:  cfg.Observability.OTLP.Timeout,
		},
	}
}
