package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/sync/singleflight"
)

// Verifier validates a raw bearer token and returns the parsed token.
type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

// fetchTimeout bounds one JWKS fetch. The fetch is shared by every waiter,
// so it is detached from the cancellation of the caller that started it.
const fetchTimeout = 10 * time.Second

type fetchFunc func(ctx context.Context, url string) (jwk.Set, error)

// JWTVerifier checks tokens against the provider's JWKS.
type JWTVerifier struct {
	issuer   string
	clientID string
	keys     *keyCache
}

// NewJWTVerifier fetches the JWKS once so a wrong URL fails at startup.
func NewJWTVerifier(ctx context.Context, cfg config.IdP) (*JWTVerifier, error) {
	return newJWTVerifier(ctx, cfg, func(ctx context.Context, url string) (jwk.Set, error) {
		return jwk.Fetch(ctx, url)
	})
}

func newJWTVerifier(ctx context.Context, cfg config.IdP, fetch fetchFunc) (*JWTVerifier, error) {
	v := &JWTVerifier{
		issuer:   cfg.Issuer,
		clientID: cfg.ClientID,
		keys:     &keyCache{url: cfg.JwksURL, minInterval: cfg.MinInterval, fetch: fetch, now: time.Now},
	}
	if _, err := v.keys.get(ctx); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch failed: %w", err)
	}
	return v, nil
}

// Verify checks the signature, the standard time claims, the issuer and the
// authorized party (azp must equal the client id).
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	set, err := v.keys.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyset for verification: %w", err)
	}
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithClaimValue("azp", v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return token, nil
}

// keyCache holds the last JWKS for minInterval. Concurrent refreshes collapse
// into one fetch. A failed refresh keeps serving the stale set and waits
// another minInterval before trying again.
type keyCache struct {
	url         string
	minInterval time.Duration
	fetch       fetchFunc
	now         func() time.Time
	group       singleflight.Group

	mu        sync.RWMutex
	set       jwk.Set
	fetchedAt time.Time
}

func (c *keyCache) get(ctx context.Context) (jwk.Set, error) {
	c.mu.RLock()
	set, fresh := c.set, c.set != nil && c.now().Sub(c.fetchedAt) < c.minInterval
	c.mu.RUnlock()
	if fresh {
		return set, nil
	}
	v, err, _ := c.group.Do(c.url, func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(jwk.Set), nil
}

func (c *keyCache) refresh(ctx context.Context) (jwk.Set, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()
	set, err := c.fetch(ctx, c.url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.set != nil {
			c.fetchedAt = c.now()
			return c.set, nil
		}
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", c.url, err)
	}
	c.set, c.fetchedAt = set, c.now()
	return set, nil
}
