package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aussiebroadwan/crm/pkg/httpx"
)

// DefaultJWTSecret is only good enough for local development. Startup is
// refused when it is still in place with ENV=prod.
const DefaultJWTSecret = "insecure-dev-secret-change-me"

// minProdSecretLen is the HS256 key length required in production.
const minProdSecretLen = 32

var ErrInsecureSecret = errors.New("JWT_SECRET must be set to at least 32 bytes in production")

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	DatabaseURL string // sqlite://path, a bare path, or postgres://... (default: sqlite://crm.db)
	DBMaxConns  int    // Pool size for postgres (default: 10)

	JWTSecret     string        // HS256 signing key (default: insecure placeholder)
	JWTIssuer     string        // iss claim (default: crm-auth)
	SessionTTL    time.Duration // Session token lifetime (default: 1h)
	InvitationTTL time.Duration // Invitation lifetime (default: 24h)

	PublicURL             string   // Browser-facing origin for invitation links (default: http://localhost:3000)
	AllowedOrigins        []string // CORS origins; "*" disables credentialed CORS (default: PUBLIC_URL)
	CookieSecure          bool     // Mark the session cookie Secure (default: true in prod)
	EdgeProtectedPrefixes []string // Paths the edge gate guards (default: /dashboard)
	TrustedProxies        []string // Proxy IPs/CIDRs allowed to set X-Forwarded-For (default: none)

	RedisURL string // Token denylist; empty disables server-side logout

	HousekeepingInterval time.Duration // Expired invitation sweep interval (default: 1h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")
	publicURL := getEnvOrDefault("PUBLIC_URL", "http://localhost:3000")

	return Config{
		Env:       env,
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		DatabaseURL: getEnvOrDefault("DATABASE_URL", "sqlite://crm.db"),
		DBMaxConns:  getEnvIntOrDefault("DB_MAX_CONNS", 10),

		JWTSecret:     getEnvOrDefault("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:     getEnvOrDefault("JWT_ISSUER", "crm-auth"),
		SessionTTL:    getEnvDurationOrDefault("SESSION_TTL", time.Hour),
		InvitationTTL: getEnvDurationOrDefault("INVITATION_TTL", 24*time.Hour),

		PublicURL:             publicURL,
		AllowedOrigins:        getEnvListOrDefault("ALLOWED_ORIGINS", []string{publicURL}),
		CookieSecure:          getEnvBoolOrDefault("COOKIE_SECURE", env == "prod"),
		EdgeProtectedPrefixes: getEnvListOrDefault("EDGE_PROTECTED_PREFIXES", []string{"/dashboard"}),
		TrustedProxies:        getEnvListOrDefault("TRUSTED_PROXIES", nil),

		RedisURL: os.Getenv("REDIS_URL"),

		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogFormat, validation.In("json", "text")),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.DBMaxConns, validation.Required, validation.Min(1)),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.JWTIssuer, validation.Required),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.InvitationTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.PublicURL, validation.Required, is.URL),
		validation.Field(&c.ShutdownGracePeriod, validation.Required),
		validation.Field(&c.TrustedProxies, validation.By(func(any) error {
			_, err := httpx.ParseTrustedProxies(c.TrustedProxies)
			return err
		})),
	)
	if err != nil {
		return err
	}

	if c.Env == "prod" && (c.JWTSecret == DefaultJWTSecret || len(c.JWTSecret) < minProdSecretLen) {
		return ErrInsecureSecret
	}
	return nil
}

// UsesDefaultSecret reports whether the placeholder signing key is in use.
func (c Config) UsesDefaultSecret() bool { return c.JWTSecret == DefaultJWTSecret }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
