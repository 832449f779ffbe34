//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/crm/pkg/idx"
)

func setupStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("crm_test"),
		tcpostgres.WithUsername("crm"),
		tcpostgres.WithPassword("crm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.Connect(ctx, connStr, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "second run must be a no-op")
	return s
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	company := domain.Company{ID: idx.New().String(), Name: "Acme", CreatedAt: now}
	require.NoError(t, s.Companies().CreateCompany(ctx, company))
	require.ErrorIs(t, s.Companies().CreateCompany(ctx, domain.Company{ID: idx.New().String(), Name: "Acme", CreatedAt: now}), store.ErrAlreadyExists)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     "owner",
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
		CompanyID:    company.ID,
		CreatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	got, err := s.Users().GetUserByUsername(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, now, got.CreatedAt)

	inv := domain.Invitation{
		ID:        idx.New().String(),
		Email:     "crew@example.com",
		CompanyID: company.ID,
		Role:      domain.RoleUser,
		TokenHash: "fingerprint",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Invitations().CreateInvitation(ctx, inv)
	}))

	found, err := s.Invitations().GetActiveInvitationByTokenHash(ctx, "fingerprint", now)
	require.NoError(t, err)
	require.Equal(t, inv.ID, found.ID)

	_, err = s.Invitations().GetActiveInvitationByTokenHash(ctx, "fingerprint", now.Add(2*time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Invitations().DeleteExpiredInvitations(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.ErrorIs(t, s.Invitations().DeleteInvitation(ctx, inv.ID), store.ErrNotFound)
}
