package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newHS256(t *testing.T, secret string) (*jwtx.HS256, *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(1700000000, 0)}
	h, err := jwtx.NewHS256([]byte(secret), "crm-auth")
	require.NoError(t, err)
	return h.WithClock(clk.Now), clk
}

func TestNewHS256_EmptySecret(t *testing.T) {
	_, err := jwtx.NewHS256(nil, "crm-auth")
	require.ErrorIs(t, err, jwtx.ErrEmptySecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	h, _ := newHS256(t, "secret")

	tests := []struct {
		name   string
		claims jwtx.Claims
	}{
		{"admin with company", jwtx.NewSessionClaims("u1", "owner", "admin", "c1")},
		{"manager", jwtx.NewSessionClaims("u2", "m@example.com", "manager", "c1")},
		{"user without company", jwtx.NewSessionClaims("u3", "legacy", "user", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := h.Issue(tt.claims, time.Hour)
			require.NoError(t, err)

			got, err := h.Verify(token)
			require.NoError(t, err)
			require.Equal(t, tt.claims.UserID, got.UserID)
			require.Equal(t, tt.claims.Username, got.Username)
			require.Equal(t, tt.claims.Role, got.Role)
			require.Equal(t, tt.claims.CompanyID, got.CompanyID)
			require.NotEmpty(t, got.TokenID())
			require.Equal(t, "crm-auth", got.Issuer)
		})
	}
}

func TestIssueRejectsIncompleteClaims(t *testing.T) {
	h, _ := newHS256(t, "secret")

	for name, c := range map[string]jwtx.Claims{
		"no user id": jwtx.NewSessionClaims("", "alice", "admin", "c1"),
		"no role":    jwtx.NewSessionClaims("u1", "alice", "", "c1"),
	} {
		t.Run(name, func(t *testing.T) {
			token, err := h.Issue(c, time.Hour)
			require.ErrorIs(t, err, jwtx.ErrIncompleteClaims)
			require.Empty(t, token)
		})
	}

	// Username and company are optional on both sides.
	token, err := h.Issue(jwtx.NewSessionClaims("u1", "", "user", ""), time.Hour)
	require.NoError(t, err)
	_, err = h.Verify(token)
	require.NoError(t, err)
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	h, clk := newHS256(t, "secret")

	token, err := h.Issue(jwtx.NewSessionClaims("u1", "alice", "user", "c1"), time.Hour)
	require.NoError(t, err)

	clk.now = clk.now.Add(59 * time.Minute)
	_, err = h.Verify(token)
	require.NoError(t, err)

	clk.now = clk.now.Add(2 * time.Minute)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerify_SingleByteTamper(t *testing.T) {
	h, _ := newHS256(t, "secret")

	token, err := h.Issue(jwtx.NewSessionClaims("u1", "alice", "user", "c1"), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	for i, segment := range parts {
		mid := len(segment) / 2
		swapped := byte('A')
		if segment[mid] == 'A' {
			swapped = 'B'
		}
		altered := segment[:mid] + string(swapped) + segment[mid+1:]

		tampered := append([]string{}, parts...)
		tampered[i] = altered
		_, err := h.Verify(strings.Join(tampered, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalidToken, "segment %d", i)
	}
}

func TestVerify_FailuresAreIndistinguishable(t *testing.T) {
	h, _ := newHS256(t, "secret")
	other, _ := newHS256(t, "other-secret")

	forged, err := other.Issue(jwtx.NewSessionClaims("u1", "alice", "admin", "c1"), time.Hour)
	require.NoError(t, err)

	expired, err := h.Issue(jwtx.NewSessionClaims("u1", "alice", "admin", "c1"), -time.Minute)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone,
		jwtx.NewSessionClaims("u1", "alice", "admin", "c1"),
	).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "crm-auth"},
		UserID:           "u1",
		Role:             "admin",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Unix(1700000000, 0).Add(time.Hour)),
		},
		UserID: "u1",
		Role:   "admin",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"forged":       forged,
		"expired":      expired,
		"alg none":     unsigned,
		"no exp":       noExpiry,
		"wrong issuer": wrongIssuer,
		"garbage":      "not.a.jwt",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.Verify(token)
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		})
	}
}
