// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopadmin/internal/catalog/config"
	"github.com/abgdnv/shopadmin/internal/catalog/service"
	"github.com/abgdnv/shopadmin/internal/catalog/store"
	"github.com/abgdnv/shopadmin/internal/catalog/transport/rest"
	"github.com/abgdnv/shopadmin/pkg/messaging"
	"github.com/abgdnv/shopadmin/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const instrumentationName = "github.com/abgdnv/shopadmin/internal/catalog"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// MetricsHandler serves the Prometheus scrape endpoint; nil disables it.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupDependencies wires the service over the given store and publisher.
// Metrics go to the global meter provider.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) (*Dependencies, error) {
	pService, err := service.NewService(productStore, publisher, otel.Meter(instrumentationName), logger)
	if err != nil {
		return nil, err
	}
	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler builds the router with all catalog routes.
// Used by tests to run the service in an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "catalog")
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Handle(deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
