// Package main runs the product admin panel.
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
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/shopadmin/internal/admin/app"
	"github.com/abgdnv/shopadmin/internal/admin/config"
	"github.com/abgdnv/shopadmin/internal/admin/transport/ui"
	"github.com/abgdnv/shopadmin/pkg/auth"
	"github.com/abgdnv/shopadmin/pkg/bootstrap"
	"github.com/abgdnv/shopadmin/pkg/config/configloader"
	"github.com/abgdnv/shopadmin/pkg/server"
	"github.com/abgdnv/shopadmin/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "admin"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the catalog client and the screen registry, then starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		server.OnShutdown(gCtx, g, "tracer provider", cfg.Shutdown, logger, tracerProvider.Shutdown)
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		var err error
		if metrics, err = telemetry.NewMeterProvider(serviceName); err != nil {
			return err
		}
		server.OnShutdown(gCtx, g, "meter provider", cfg.Shutdown, logger, metrics.Provider.Shutdown)
	}

	catalogClient := app.NewCatalogClient(cfg, logger)
	checks := []ui.HealthCheck{catalogClient.Check}

	var verifier auth.Verifier
	if cfg.IdP.Enabled {
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		jwtVerifier, err := auth.NewJWTVerifier(startupCtx, cfg.IdP)
		if err != nil {
			return fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		verifier = jwtVerifier
		checks = append(checks, ui.CheckHealth(cfg.IdP.JwksURL))
	} else {
		logger.Warn("IdP is disabled, the admin screen is not protected")
	}

	deps, err := app.SetupDependencies(cfg, catalogClient, verifier, logger, checks...)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	if metrics != nil {
		deps.MetricsHandler, deps.MetricsPath = metrics.Handler, cfg.Telemetry.Metrics.Path
	}
	logger.Info("Using catalog", slog.String("url", cfg.Catalog.BaseURL))
	server.Serve(gCtx, g, app.SetupHttpServer(deps, cfg), "Admin panel", cfg.Shutdown, logger)
	if cfg.PProf.Enabled {
		server.Serve(gCtx, g, server.NewPprofServer(cfg.PProf.Addr), "pprof server", cfg.Shutdown, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
