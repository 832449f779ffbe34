package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "DATABASE_URL", "PUBLIC_URL", "JWT_SECRET", "SESSION_TTL", "INVITATION_TTL",
		"ALLOWED_ORIGINS", "REDIS_URL", "TRUSTED_PROXIES", "COOKIE_SECURE", "EDGE_PROTECTED_PREFIXES",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "sqlite://crm.db", cfg.DatabaseURL)
	require.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Equal(t, 24*time.Hour, cfg.InvitationTTL)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins, "origins follow PUBLIC_URL")
	require.Equal(t, []string{"/dashboard"}, cfg.EdgeProtectedPrefixes)
	require.Empty(t, cfg.RedisURL)
	require.Empty(t, cfg.TrustedProxies)
	require.False(t, cfg.CookieSecure)
	require.True(t, cfg.UsesDefaultSecret())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://crm:crm@db:5432/crm")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("INVITATION_TTL", "90") // bare integers are minutes
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("EDGE_PROTECTED_PREFIXES", "/dashboard,/settings")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 90*time.Minute, cfg.InvitationTTL)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	require.Equal(t, []string{"/dashboard", "/settings"}, cfg.EdgeProtectedPrefixes)
	require.True(t, cfg.CookieSecure, "prod defaults to secure cookies")
	require.Equal(t, 10, cfg.DBMaxConns)
	require.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestAllowedOriginsFollowPublicURL(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://crm.example.com")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := LoadConfig()
	require.Equal(t, []string{"https://crm.example.com"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:                 "dev",
			LogFormat:           "json",
			Port:                8080,
			DatabaseURL:         "sqlite://crm.db",
			DBMaxConns:          10,
			JWTSecret:           DefaultJWTSecret,
			JWTIssuer:           "crm-auth",
			SessionTTL:          time.Hour,
			InvitationTTL:       24 * time.Hour,
			PublicURL:           "http://localhost:3000",
			ShutdownGracePeriod: 10 * time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		ok      bool
	}{
		{"dev with placeholder secret", func(*Config) {}, nil, true},
		{"prod with placeholder secret", func(c *Config) { c.Env = "prod" }, ErrInsecureSecret, false},
		{"prod with short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, ErrInsecureSecret, false},
		{"prod with real secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "0123456789abcdef0123456789abcdef"
		}, nil, true},
		{"port out of range", func(c *Config) { c.Port = 70000 }, nil, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, nil, false},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }, nil, false},
		{"public url not a url", func(c *Config) { c.PublicURL = "not a url" }, nil, false},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, nil, false},
		{"trusted proxy ranges", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1"} }, nil, true},
		{"trusted proxy hostname", func(c *Config) { c.TrustedProxies = []string{"lb.internal"} }, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
