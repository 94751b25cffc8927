// Package auth guards HTTP routes with OpenID Connect access tokens.
package auth

import (
	"net/http"
	"strings"

	"github.com/abgdnv/shopadmin/pkg/web"
)

// TokenCookie carries the access token for browsers that cannot set an
// Authorization header, such as plain form posts behind an auth proxy.
const TokenCookie = "access_token"

// Middleware verifies the access token and stores its `sub` claim in the
// request context (see web.GetSubject). The token is read from a bearer
// Authorization header, or from TokenCookie when no header is sent.
// Requests without a valid token get 401.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, problem := tokenFrom(r)
			if problem != "" {
				http.Error(w, problem, http.StatusUnauthorized)
				return
			}
			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			subject, ok := token.Subject()
			if !ok || subject == "" {
				http.Error(w, "no claim `sub`", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithSubject(r.Context(), subject)))
		})
	}
}

// tokenFrom returns the raw token, or a reason it is missing.
func tokenFrom(r *http.Request) (token, problem string) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return "", "Bearer token is required"
		}
		return token, ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, ""
	}
	return "", "Authorization header is required"
}
