// Package app contains the application setup for the admin panel.
package app

import (
	"log/slog"
	"net/http"

	sCfg "github.com/abgdnv/shopadmin/internal/admin/config"
	"github.com/abgdnv/shopadmin/internal/admin/datalayer"
	"github.com/abgdnv/shopadmin/internal/admin/screen"
	"github.com/abgdnv/shopadmin/internal/admin/transport/ui"
	"github.com/abgdnv/shopadmin/internal/admin/view"
	"github.com/abgdnv/shopadmin/pkg/auth"
	"github.com/abgdnv/shopadmin/pkg/client/resilience"
	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/abgdnv/shopadmin/pkg/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const instrumentationName = "github.com/abgdnv/shopadmin/internal/admin"

type Dependencies struct {
	Registry *screen.Registry
	Renderer *view.Renderer
	Logger   *slog.Logger
	Session  config.SessionConfig
	// Guard protects the screen routes; nil leaves them open.
	Guard  func(http.Handler) http.Handler
	Checks []ui.HealthCheck
	// MetricsHandler serves the Prometheus scrape endpoint; nil disables it.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewCatalogClient builds the data-access client. Each call is traced once;
// retries and the circuit breaker sit below the tracing layer.
func NewCatalogClient(cfg *sCfg.Config, logger *slog.Logger) *datalayer.Client {
	transport := otelhttp.NewTransport(resilience.NewTransport(http.DefaultTransport, "catalog", cfg.Resilience))
	return datalayer.NewClient(cfg.Catalog, transport, logger)
}

// SetupDependencies wires the screen registry over gateway. A nil verifier
// leaves the screen unguarded.
func SetupDependencies(cfg *sCfg.Config, gateway datalayer.Gateway, verifier auth.Verifier, logger *slog.Logger,
	checks ...ui.HealthCheck) (*Dependencies, error) {
	registry, err := screen.NewRegistry(gateway, cfg.Session.IdleTimeout, otel.Meter(instrumentationName), logger)
	if err != nil {
		return nil, err
	}
	renderer, err := view.NewRenderer(ui.BasePath)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{
		Registry: registry,
		Renderer: renderer,
		Logger:   logger,
		Session:  cfg.Session,
		Checks:   checks,
	}
	if verifier != nil {
		deps.Guard = auth.Middleware(verifier)
	}
	return deps, nil
}

// SetupHttpHandler builds the router with the screen, probe and metrics routes.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	ui.NewHandler(deps.Registry, deps.Renderer, deps.Session, deps.Guard, deps.Logger, deps.Checks...).RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Handle(deps.MetricsPath, deps.MetricsHandler)
	}
	return otelhttp.NewHandler(mux, "admin")
}

// SetupHttpServer creates and configures an HTTP server for the admin panel.
func SetupHttpServer(deps *Dependencies, cfg *sCfg.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
