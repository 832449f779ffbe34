package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"remote addr", nil},
		{"forwarded for is ignored", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}},
		{"real ip is ignored", map[string]string{"X-Real-IP": "203.0.113.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom("192.168.1.1:12345")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
		})
	}
}

func TestClientIPKeyExtractor(t *testing.T) {
	trusted, err := httpx.ParseTrustedProxies([]string{"10.0.0.0/8", " 172.16.0.5 "})
	require.NoError(t, err)
	extract := httpx.ClientIPKeyExtractor(trusted)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted peer ignores headers", "198.51.100.7:1", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "198.51.100.7"},
		{"trusted peer without headers", "10.1.2.3:1", nil, "10.1.2.3"},
		{"trusted peer forwards client", "10.1.2.3:1", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"spoofed leftmost hop is skipped", "10.1.2.3:1", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.1, 172.16.0.5"}, "203.0.113.1"},
		{"garbage hop falls back to peer", "10.1.2.3:1", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.2.3"},
		{"real ip from trusted peer", "172.16.0.5:1", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom(tt.remote)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, extract(req))
		})
	}

	t.Run("no trusted proxies", func(t *testing.T) {
		req := requestFrom("10.1.2.3:1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "10.1.2.3", httpx.ClientIPKeyExtractor(nil)(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := httpx.ParseTrustedProxies([]string{"10.0.0.1/8", "::1", ""})
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("::1/128")}, got)

	_, err = httpx.ParseTrustedProxies([]string{"proxy.internal"})
	require.Error(t, err)
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)

	t.Run("skips empty values", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extract(requestFrom("192.168.1.1:1")))
	})

	t.Run("joins user and address", func(t *testing.T) {
		req := requestFrom("192.168.1.1:1")
		req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, "user-1"))
		require.Equal(t, "user-1:192.168.1.1", extract(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over the burst", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, nil)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.JSONEq(t, `{"message":"Too many requests. Please try again later."}`, rec.Body.String())
	})

	t.Run("keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, nil)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forwarded headers do not open fresh buckets", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, nil)(okHandler)

		for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
			req := requestFrom("192.168.1.1:1")
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if i == 0 {
				require.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Equal(t, http.StatusTooManyRequests, rec.Code)
			}
		}
	})

	t.Run("requests without a key pass", func(t *testing.T) {
		noKey := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, noKey)(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	got := httpx.ParseRateLimitFromEnv("TEST", def)
	require.Equal(t, 50, got.RequestsPerWindow)
	require.Equal(t, 10*time.Second, got.Window)
	require.Equal(t, 5, got.Burst, "non-positive override is ignored")
}
