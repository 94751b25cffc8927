package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/abgdnv/shopadmin/pkg/web"
	"github.com/go-chi/chi/v5"
)

// NewHTTPServer creates and configures a new HTTP server instance.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter creates a new Chi router with a set of
// middleware for request ID injection, structured logging, and recovery.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	return mux
}

// NewPprofServer returns a server for the net/http/pprof handlers registered
// on http.DefaultServeMux.
func NewPprofServer(addr string) *http.Server {
	return &http.Server{
		Addr: addr,
	}
}
