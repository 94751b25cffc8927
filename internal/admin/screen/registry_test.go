package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/shopadmin/internal/admin/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newRegistry(t *testing.T, gw *mockGateway, idle time.Duration) (*Registry, *time.Time) {
	t.Helper()
	reg, err := NewRegistry(gw, idle, noop.NewMeterProvider().Meter("test"), discardLogger())
	require.NoError(t, err)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }
	return reg, &clock
}

func TestRegistry_SeedsNewScreenOnce(t *testing.T) {
	// given
	seed := []product.Product{{ID: 1, Title: "A"}}
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return(seed, nil).Once()
	reg, _ := newRegistry(t, gw, time.Minute)
	ctx := context.Background()

	// when
	first := reg.Get(ctx, "s1")
	second := reg.Get(ctx, "s1")

	// then
	assert.Same(t, first, second)
	assert.Equal(t, seed, first.State().Products)
	assert.Equal(t, 1, reg.Len())
	gw.AssertExpectations(t)
}

func TestRegistry_ScreensAreIsolated(t *testing.T) {
	// given
	a := product.Product{ID: 1, Title: "A"}
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return([]product.Product{a}, nil).Twice()
	gw.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	reg, _ := newRegistry(t, gw, time.Minute)
	ctx := context.Background()
	one := reg.Get(ctx, "s1")
	two := reg.Get(ctx, "s2")

	// when
	one.OpenDeleteModal(a)
	require.NoError(t, one.ConfirmDelete(ctx))

	// then
	assert.Empty(t, one.State().Products)
	assert.Equal(t, []product.Product{a}, two.State().Products)
	gw.AssertExpectations(t)
}

func TestRegistry_SeedFailureStartsFailed(t *testing.T) {
	// given
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return(nil, errors.New("catalog down")).Once()
	reg, _ := newRegistry(t, gw, time.Minute)

	// when
	s := reg.Get(context.Background(), "s1")

	// then
	st := s.State()
	assert.True(t, st.Failed())
	assert.EqualError(t, st.Err, "catalog down")
	assert.Empty(t, st.Products)
}

func TestRegistry_EvictsIdleScreens(t *testing.T) {
	// given
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return([]product.Product{}, nil).Times(3)
	reg, clock := newRegistry(t, gw, time.Minute)
	ctx := context.Background()
	stale := reg.Get(ctx, "stale")
	reg.Get(ctx, "fresh")

	// when
	*clock = clock.Add(45 * time.Second)
	reg.Get(ctx, "fresh")
	*clock = clock.Add(30 * time.Second)
	again := reg.Get(ctx, "stale")

	// then
	assert.NotSame(t, stale, again, "an idle screen is replaced by a fresh one")
	assert.Equal(t, 2, reg.Len())
	gw.AssertExpectations(t)
}

func TestRegistry_ErrorSurvivesRevisit(t *testing.T) {
	// given
	a := product.Product{ID: 1}
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return([]product.Product{a}, nil).Once()
	gw.On("Delete", mock.Anything, int64(1)).Return(errors.New("network")).Once()
	reg, _ := newRegistry(t, gw, time.Minute)
	ctx := context.Background()
	s := reg.Get(ctx, "s1")
	s.OpenDeleteModal(a)
	require.NoError(t, s.ConfirmDelete(ctx))

	// when
	revisited := reg.Get(ctx, "s1").State()

	// then
	assert.EqualError(t, revisited.Err, "network")
	gw.AssertExpectations(t)
}

func TestRegistry_Discard(t *testing.T) {
	// given
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return([]product.Product{}, nil).Twice()
	reg, _ := newRegistry(t, gw, time.Minute)
	ctx := context.Background()
	first := reg.Get(ctx, "s1")

	// when
	discarded := reg.Discard(ctx, "s1")
	missing := reg.Discard(ctx, "nope")
	second := reg.Get(ctx, "s1")

	// then
	assert.True(t, discarded)
	assert.False(t, missing)
	assert.NotSame(t, first, second)
	gw.AssertExpectations(t)
}

func TestRegistry_TracksActiveScreens(t *testing.T) {
	// given
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	gw := &mockGateway{}
	gw.On("List", mock.Anything).Return([]product.Product{}, nil)
	reg, err := NewRegistry(gw, time.Minute, meter, discardLogger())
	require.NoError(t, err)
	ctx := context.Background()

	// when
	reg.Get(ctx, "s1")
	reg.Get(ctx, "s2")
	reg.Get(ctx, "s2")
	reg.Discard(ctx, "s1")

	// then
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	var active int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "admin_screens_active" {
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					active += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), active)
}
