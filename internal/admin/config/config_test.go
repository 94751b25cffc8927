package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/shopadmin/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 8080
  timeout:
    read: 5s
    write: 15s
    idle: 60s
    readheader: 2s
log:
  level: info
shutdown:
  timeout: 10s
catalog:
  baseurl: http://localhost:8081
  timeout: 5s
resilience:
  retry:
    maxattempts: 3
    initialbackoff: 100ms
    maxbackoff: 1s
  circuitbreaker:
    consecutivefailures: 5
    errorratepercent: 50
    minrequests: 10
    opentimeout: 30s
session:
  cookiename: shopadmin_screen
  idletimeout: 30m
idp:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	// given
	t.Setenv("ADMIN_CONFIG_FILE", writeConfig(t, testYAML))
	t.Setenv("ADMIN_CATALOG_BASEURL", "http://catalog:8081")
	t.Setenv("ADMIN_RESILIENCE_RETRY_MAXATTEMPTS", "4")

	// when
	cfg, err := configloader.Load[*Config]("admin")

	// then
	require.NoError(t, err)
	assert.Equal(t, "http://catalog:8081", cfg.Catalog.BaseURL, "env must override the file")
	assert.Equal(t, uint(4), cfg.Resilience.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "shopadmin_screen", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Second, cfg.Resilience.CircuitBreaker.OpenTimeout)
	assert.Contains(t, cfg.String(), "--- Session ---")
}

func TestLoad_ValidationFails(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "catalog url without scheme",
			env:     map[string]string{"ADMIN_CATALOG_BASEURL": "catalog:8081"},
			wantErr: "invalid upstream base URL",
		},
		{
			name:    "no retry attempts",
			env:     map[string]string{"ADMIN_RESILIENCE_RETRY_MAXATTEMPTS": "0"},
			wantErr: "retry.maxattempts",
		},
		{
			name:    "idp enabled without jwks",
			env:     map[string]string{"ADMIN_IDP_ENABLED": "true"},
			wantErr: "IdP JWKS URL cannot be empty",
		},
		{
			name:    "no session cookie",
			env:     map[string]string{"ADMIN_SESSION_COOKIENAME": ""},
			wantErr: "session cookie name is not configured",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			t.Setenv("ADMIN_CONFIG_FILE", writeConfig(t, testYAML))
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// when
			_, err := configloader.Load[*Config]("admin")

			// then
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
