package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopadmin/pkg/config"
	"golang.org/x/sync/errgroup"
)

// Serve runs srv inside g and shuts it down gracefully once ctx is done.
func Serve(ctx context.Context, g *errgroup.Group, srv *http.Server, name string, shutdown config.ShutdownConfig, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info(name+" listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return nil
	})
	OnShutdown(ctx, g, name, shutdown, logger, srv.Shutdown)
}

// OnShutdown calls stop inside g once ctx is done, bounded by the shutdown
// timeout.
func OnShutdown(ctx context.Context, g *errgroup.Group, name string, shutdown config.ShutdownConfig, logger *slog.Logger,
	stop func(context.Context) error) {
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name)
		stopCtx, cancel := shutdown.Context()
		defer cancel()
		if err := stop(stopCtx); err != nil {
			return fmt.Errorf("failed to stop %s: %w", name, err)
		}
		return nil
	})
}
