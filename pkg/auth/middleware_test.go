package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/shopadmin/pkg/web"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	args := m.Called(ctx, tokenString)
	token, _ := args.Get(0).(jwt.Token)
	return token, args.Error(1)
}

func TestMiddleware(t *testing.T) {
	admin, err := jwt.NewBuilder().Subject("admin-1").Issuer("idp").Build()
	require.NoError(t, err)
	anonymous, err := jwt.NewBuilder().Issuer("idp").Build()
	require.NoError(t, err)

	testCases := []struct {
		name        string
		header      string
		cookie      string
		verify      func(m *mockVerifier)
		wantStatus  int
		wantSubject string
	}{
		{
			name:   "bearer header",
			header: "Bearer good",
			verify: func(m *mockVerifier) {
				m.On("Verify", mock.Anything, "good").Return(admin, nil)
			},
			wantStatus:  http.StatusOK,
			wantSubject: "admin-1",
		},
		{
			name:   "cookie when no header is sent",
			cookie: "from-cookie",
			verify: func(m *mockVerifier) {
				m.On("Verify", mock.Anything, "from-cookie").Return(admin, nil)
			},
			wantStatus:  http.StatusOK,
			wantSubject: "admin-1",
		},
		{
			name:   "header wins over cookie",
			header: "Bearer good",
			cookie: "ignored",
			verify: func(m *mockVerifier) {
				m.On("Verify", mock.Anything, "good").Return(admin, nil)
			},
			wantStatus:  http.StatusOK,
			wantSubject: "admin-1",
		},
		{name: "no credentials", verify: func(*mockVerifier) {}, wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic abc", verify: func(*mockVerifier) {}, wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", verify: func(*mockVerifier) {}, wantStatus: http.StatusUnauthorized},
		{
			name:   "rejected by verifier",
			header: "Bearer forged",
			verify: func(m *mockVerifier) {
				m.On("Verify", mock.Anything, "forged").Return(nil, errors.New("signature is invalid"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "no subject",
			header: "Bearer anon",
			verify: func(m *mockVerifier) {
				m.On("Verify", mock.Anything, "anon").Return(anonymous, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			verifier := new(mockVerifier)
			tc.verify(verifier)
			var gotSubject string
			h := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = web.GetSubject(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			rr := httptest.NewRecorder()

			// when
			h.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantSubject, gotSubject)
			verifier.AssertExpectations(t)
		})
	}
}
