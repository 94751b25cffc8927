// Package main runs the catalog service, the product REST API the admin panel talks to.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/shopadmin/internal/catalog/app"
	"github.com/abgdnv/shopadmin/internal/catalog/config"
	"github.com/abgdnv/shopadmin/internal/catalog/store"
	"github.com/abgdnv/shopadmin/pkg/bootstrap"
	"github.com/abgdnv/shopadmin/pkg/config/configloader"
	"github.com/abgdnv/shopadmin/pkg/messaging"
	natsclient "github.com/abgdnv/shopadmin/pkg/nats"
	"github.com/abgdnv/shopadmin/pkg/server"
	"github.com/abgdnv/shopadmin/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the store, the event publisher and telemetry, then starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	productStore, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	g, gCtx := errgroup.WithContext(ctx)

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.NATS.Enabled {
		nc, js, err := natsclient.Connect(ctx, cfg.NATS, logger, messaging.ProductsSubjects)
		if err != nil {
			return err
		}
		publisher = natsclient.NewNatsPublisher(js)
		logger.Info("Publishing product events", slog.String("stream", cfg.NATS.Stream))
		server.OnShutdown(gCtx, g, "NATS connection", cfg.Shutdown, logger, func(context.Context) error {
			return nc.Drain()
		})
	} else {
		logger.Info("NATS is disabled, product events are not published")
	}

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		server.OnShutdown(gCtx, g, "tracer provider", cfg.Shutdown, logger, tracerProvider.Shutdown)
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		if metrics, err = telemetry.NewMeterProvider(serviceName); err != nil {
			return err
		}
		server.OnShutdown(gCtx, g, "meter provider", cfg.Shutdown, logger, metrics.Provider.Shutdown)
	}

	deps, err := app.SetupDependencies(productStore, publisher, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	if metrics != nil {
		deps.MetricsHandler, deps.MetricsPath = metrics.Handler, cfg.Telemetry.Metrics.Path
	}

	server.Serve(gCtx, g, app.SetupHttpServer(deps, cfg), "HTTP server", cfg.Shutdown, logger)
	if cfg.PProf.Enabled {
		server.Serve(gCtx, g, server.NewPprofServer(cfg.PProf.Addr), "pprof server", cfg.Shutdown, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newStore returns the product store selected by database.driver and a func releasing it.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if !cfg.Database.UsesPostgres() {
		logger.Warn("Using in-memory product store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
	if cfg.Database.MigrateOnStart {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		logger.Info("Database schema is up to date")
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}
