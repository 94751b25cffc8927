package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

func TestNewHTTPServer(t *testing.T) {
	cfg := config.HTTPConfig{Port: 8080, MaxHeaderBytes: 1 << 16}
	cfg.Timeout.Read = time.Second
	cfg.Timeout.ReadHeader = 2 * time.Second

	srv := NewHTTPServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 1<<16, srv.MaxHeaderBytes)
}

func TestNewChiRouter_TagsRequestsAndRecovers(t *testing.T) {
	// given
	mux := NewChiRouter(discard)
	mux.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()

	// when
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestOnShutdown(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(ctx)
	var deadlineSet bool
	OnShutdown(gCtx, g, "exporter", config.ShutdownConfig{Timeout: time.Second}, discard, func(stopCtx context.Context) error {
		_, deadlineSet = stopCtx.Deadline()
		return errors.New("flush failed")
	})

	// when
	cancel()
	err := g.Wait()

	// then
	require.Error(t, err)
	assert.Equal(t, "failed to stop exporter: flush failed", err.Error())
	assert.True(t, deadlineSet)
}
