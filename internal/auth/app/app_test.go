package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Env:                   "test",
		LogLevel:              "error",
		LogFormat:             "json",
		Port:                  8080,
		DatabaseURL:           "sqlite://" + filepath.Join(t.TempDir(), "crm.db"),
		DBMaxConns:            1,
		JWTSecret:             "app-test-secret",
		JWTIssuer:             "crm-auth",
		SessionTTL:            time.Hour,
		InvitationTTL:         24 * time.Hour,
		PublicURL:             "http://localhost:3000",
		AllowedOrigins:        []string{"*"},
		EdgeProtectedPrefixes: []string{"/dashboard"},
		HousekeepingInterval:  time.Hour,
		ShutdownGracePeriod:   time.Second,
	}
}

func TestNewServesRoutes(t *testing.T) {
	app, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	for path, want := range map[string]int{
		"/livez":     http.StatusOK,
		"/readyz":    http.StatusOK,
		"/metrics":   http.StatusOK,
		"/protected": http.StatusUnauthorized,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, want, resp.StatusCode, path)
	}

	require.NoError(t, app.Shutdown())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "prod"
	cfg.JWTSecret = DefaultJWTSecret

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, ErrInsecureSecret)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	require.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("bare path is sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DatabaseURL = filepath.Join(t.TempDir(), "bare.db")

		s, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Ping(ctx))
	})

	t.Run("unknown scheme", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DatabaseURL = "mysql://root@localhost/crm"

		_, err := OpenStore(ctx, cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "mysql")
	})
}

func TestMigrateAndSweep(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	require.NoError(t, Migrate(ctx, cfg))
	require.NoError(t, Migrate(ctx, cfg))

	n, err := Sweep(ctx, cfg, NewLogger(cfg))
	require.NoError(t, err)
	require.Zero(t, n)
}
