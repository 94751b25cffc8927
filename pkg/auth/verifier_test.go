package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJWKS counts fetches and fails while err is set. It records the
// context error seen by the last fetch.
type fakeJWKS struct {
	calls  int
	err    error
	ctxErr error
}

func (f *fakeJWKS) fetch(ctx context.Context, _ string) (jwk.Set, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return nil, f.err
	}
	return jwk.NewSet(), nil
}

var idp = config.IdP{
	Enabled:     true,
	JwksURL:     "https://idp.example.com/jwks",
	Issuer:      "https://idp.example.com",
	ClientID:    "admin",
	MinInterval: time.Minute,
}

func TestNewJWTVerifier_FailsWithoutKeys(t *testing.T) {
	src := &fakeJWKS{err: errors.New("connection refused")}

	_, err := newJWTVerifier(context.Background(), idp, src.fetch)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial JWKS fetch failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKeyCache_RefreshesAfterMinInterval(t *testing.T) {
	// given
	src := &fakeJWKS{}
	v, err := newJWTVerifier(context.Background(), idp, src.fetch)
	require.NoError(t, err)
	now := time.Now()
	v.keys.now = func() time.Time { return now }
	v.keys.fetchedAt = now

	// when the set is fresh
	_, err = v.keys.get(context.Background())
	require.NoError(t, err)

	// then no fetch happens
	assert.Equal(t, 1, src.calls)

	// when the interval passes
	now = now.Add(idp.MinInterval)
	_, err = v.keys.get(context.Background())

	// then the set is fetched again
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestKeyCache_ServesStaleSetWhenRefreshFails(t *testing.T) {
	// given
	src := &fakeJWKS{}
	v, err := newJWTVerifier(context.Background(), idp, src.fetch)
	require.NoError(t, err)
	stale := v.keys.set
	now := time.Now().Add(time.Hour)
	v.keys.now = func() time.Time { return now }
	src.err = errors.New("idp down")

	// when
	set, err := v.keys.get(context.Background())

	// then
	require.NoError(t, err)
	assert.Same(t, stale, set)
	assert.Equal(t, 2, src.calls)
}

func TestKeyCache_BacksOffAfterFailedRefresh(t *testing.T) {
	testCases := []struct {
		name      string
		elapsed   time.Duration
		wantCalls int
	}{
		{name: "within the interval", elapsed: idp.MinInterval / 2, wantCalls: 2},
		{name: "after the interval", elapsed: idp.MinInterval, wantCalls: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given a refresh that has just failed
			src := &fakeJWKS{}
			v, err := newJWTVerifier(context.Background(), idp, src.fetch)
			require.NoError(t, err)
			stale := v.keys.set
			now := time.Now().Add(time.Hour)
			v.keys.now = func() time.Time { return now }
			src.err = errors.New("idp down")
			_, err = v.keys.get(context.Background())
			require.NoError(t, err)

			// when
			now = now.Add(tc.elapsed)
			set, err := v.keys.get(context.Background())

			// then
			require.NoError(t, err)
			assert.Same(t, stale, set)
			assert.Equal(t, tc.wantCalls, src.calls)
		})
	}
}

func TestKeyCache_FetchIgnoresCallerCancellation(t *testing.T) {
	// given
	src := &fakeJWKS{}
	v, err := newJWTVerifier(context.Background(), idp, src.fetch)
	require.NoError(t, err)
	v.keys.now = func() time.Time { return time.Now().Add(time.Hour) }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	set, err := v.keys.get(ctx)

	// then
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Equal(t, 2, src.calls)
	assert.NoError(t, src.ctxErr)
}

func TestVerify_RejectsMalformedToken(t *testing.T) {
	src := &fakeJWKS{}
	v, err := newJWTVerifier(context.Background(), idp, src.fetch)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "not-a-jwt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify token")
}
