package screen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/shopadmin/internal/admin/datalayer"
	"go.opentelemetry.io/otel/metric"
)

type entry struct {
	screen   *Screen
	lastSeen time.Time
}

// Registry keeps one screen per session. A screen is seeded from the catalog
// when its session is first seen and lives until it is discarded or stays
// idle longer than the idle timeout.
type Registry struct {
	gateway datalayer.Gateway
	idle    time.Duration
	actions metric.Int64Counter
	active  metric.Int64UpDownCounter
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	screens map[string]*entry
}

// NewRegistry creates an empty registry. Screen metrics are registered on meter.
func NewRegistry(gateway datalayer.Gateway, idle time.Duration, meter metric.Meter, logger *slog.Logger) (*Registry, error) {
	actions, err := meter.Int64Counter("admin_screen_actions",
		metric.WithDescription("Number of screen data-access actions by action and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create action counter: %w", err)
	}
	active, err := meter.Int64UpDownCounter("admin_screens_active",
		metric.WithDescription("Number of live admin screens"))
	if err != nil {
		return nil, fmt.Errorf("failed to create screen gauge: %w", err)
	}
	return &Registry{
		gateway: gateway,
		idle:    idle,
		actions: actions,
		active:  active,
		logger:  logger.With("component", "registry"),
		now:     time.Now,
		screens: make(map[string]*entry),
	}, nil
}

// Get returns the screen of session id, creating it when there is none.
// A new screen is seeded with the current catalog list; if that fails the
// screen starts out failed with the list error.
func (r *Registry) Get(ctx context.Context, id string) *Screen {
	if s, ok := r.lookup(ctx, id); ok {
		return s
	}

	products, err := r.gateway.List(context.WithoutCancel(ctx))
	var s *Screen
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to seed screen", "error", err)
		s = failed(r.gateway, err, r.actions, r.logger)
	} else {
		s = New(r.gateway, products, r.actions, r.logger)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// a concurrent request of the same session may have won the race
	if e, ok := r.screens[id]; ok {
		e.lastSeen = r.now()
		return e.screen
	}
	r.screens[id] = &entry{screen: s, lastSeen: r.now()}
	r.active.Add(ctx, 1)
	r.logger.InfoContext(ctx, "Screen created", "products", len(products))
	return s
}

// Discard drops the screen of session id. It reports whether there was one.
func (r *Registry) Discard(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.screens[id]; !ok {
		return false
	}
	delete(r.screens, id)
	r.active.Add(ctx, -1)
	r.logger.InfoContext(ctx, "Screen discarded")
	return true
}

// Len returns the number of live screens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}

func (r *Registry) lookup(ctx context.Context, id string) (*Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictIdle(ctx)
	e, ok := r.screens[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.screen, true
}

// evictIdle must be called with mu held.
func (r *Registry) evictIdle(ctx context.Context) {
	cutoff := r.now().Add(-r.idle)
	for id, e := range r.screens {
		if e.lastSeen.Before(cutoff) {
			delete(r.screens, id)
			r.active.Add(ctx, -1)
			r.logger.DebugContext(ctx, "Idle screen evicted", "idle_since", e.lastSeen)
		}
	}
}
