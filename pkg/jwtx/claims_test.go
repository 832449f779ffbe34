package jwtx_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHasRole(t *testing.T) {
	c := jwtx.NewSessionClaims("u1", "alice", "manager", "c1")

	t.Run("listed role", func(t *testing.T) {
		require.True(t, c.HasRole("manager", "admin"))
	})

	t.Run("unlisted role", func(t *testing.T) {
		require.False(t, c.HasRole("admin"))
	})

	t.Run("empty role never matches", func(t *testing.T) {
		require.False(t, jwtx.Claims{}.HasRole(""))
	})
}

func TestClaimsJSONShape(t *testing.T) {
	c := jwtx.NewSessionClaims("u1", "alice", "admin", "c1")
	c.RegisteredClaims.ID = "jti-1"

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Equal(t, "u1", fields["id"])
	require.Equal(t, "alice", fields["username"])
	require.Equal(t, "admin", fields["role"])
	require.Equal(t, "c1", fields["companyId"])
	require.Equal(t, "jti-1", fields["jti"])
}

func TestExpiry(t *testing.T) {
	require.True(t, jwtx.Claims{}.Expiry().IsZero())

	at := time.Unix(1700000000, 0)
	c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(at)}}
	require.True(t, at.Equal(c.Expiry()))
}
