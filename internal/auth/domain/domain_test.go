package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"manager", RoleManager, false},
		{"user", RoleUser, false},
		{"Admin", "", true},
		{"owner", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInvitationActiveAt(t *testing.T) {
	now := time.Now()
	inv := Invitation{ExpiresAt: now.Add(time.Minute)}

	require.True(t, inv.ActiveAt(now))
	require.False(t, inv.ActiveAt(now.Add(time.Minute)))
}

func TestUserCanSignIn(t *testing.T) {
	require.True(t, User{Status: UserStatusActive}.CanSignIn())
	require.False(t, User{Status: UserStatusDisabled}.CanSignIn())
}
