package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/crm/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedCompany(t *testing.T, s store.Store, name string) domain.Company {
	t.Helper()
	c := domain.Company{ID: idx.New().String(), Name: name, CreatedAt: time.Now()}
	require.NoError(t, s.Companies().CreateCompany(context.Background(), c))
	return c
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
}

func TestFileDSN(t *testing.T) {
	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "crm.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestCompanies(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c := seedCompany(t, s, "Stone & Sod")

	got, err := s.Companies().GetCompanyByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, got.Name)
	require.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Millisecond)

	err = s.Companies().CreateCompany(ctx, domain.Company{ID: idx.New().String(), Name: "Stone & Sod"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Companies().GetCompanyByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	c := seedCompany(t, s, "Acme")

	u := domain.User{
		ID:           idx.New().String(),
		Username:     "owner",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleAdmin,
		CompanyID:    c.ID,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("lookup by username defaults status", func(t *testing.T) {
		got, err := s.Users().GetUserByUsername(ctx, "owner")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, domain.RoleAdmin, got.Role)
		require.Equal(t, domain.UserStatusActive, got.Status)
		require.Equal(t, c.ID, got.CompanyID)
	})

	t.Run("lookup by id", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "owner", got.Username)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("unknown company is not a conflict", func(t *testing.T) {
		orphan := u
		orphan.ID = idx.New().String()
		orphan.Username = "orphan"
		orphan.CompanyID = "no-such-company"
		err := s.Users().CreateUser(ctx, orphan)
		require.Error(t, err)
		require.NotErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.Users().GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestInvitations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	c := seedCompany(t, s, "Acme")
	now := time.Now().UTC()

	active := domain.Invitation{
		ID:        idx.New().String(),
		Email:     "crew@example.com",
		CompanyID: c.ID,
		Role:      domain.RoleUser,
		TokenHash: "hash-active",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	expired := domain.Invitation{
		ID:        idx.New().String(),
		Email:     "late@example.com",
		CompanyID: c.ID,
		Role:      domain.RoleManager,
		TokenHash: "hash-expired",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-25 * time.Hour),
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, active))
	require.NoError(t, s.Invitations().CreateInvitation(ctx, expired))

	t.Run("active lookups", func(t *testing.T) {
		got, err := s.Invitations().GetActiveInvitationByTokenHash(ctx, "hash-active", now)
		require.NoError(t, err)
		require.Equal(t, active.ID, got.ID)
		require.Equal(t, domain.RoleUser, got.Role)

		got, err = s.Invitations().GetActiveInvitationByEmail(ctx, "crew@example.com", now)
		require.NoError(t, err)
		require.Equal(t, active.ID, got.ID)
	})

	t.Run("expired rows are invisible but present", func(t *testing.T) {
		_, err := s.Invitations().GetActiveInvitationByTokenHash(ctx, "hash-expired", now)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Invitations().GetActiveInvitationByEmail(ctx, "late@example.com", now)
		require.ErrorIs(t, err, store.ErrNotFound)

		dup := expired
		dup.ID = idx.New().String()
		dup.TokenHash = "hash-other"
		require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("second invitation for an email conflicts", func(t *testing.T) {
		dup := active
		dup.ID = idx.New().String()
		dup.TokenHash = "hash-dup"
		require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("expired rows per email can be cleared", func(t *testing.T) {
		require.NoError(t, s.Invitations().DeleteExpiredInvitationsByEmail(ctx, "crew@example.com", now))
		_, err := s.Invitations().GetActiveInvitationByEmail(ctx, "crew@example.com", now)
		require.NoError(t, err, "active row must survive")
	})

	t.Run("delete is single shot", func(t *testing.T) {
		require.NoError(t, s.Invitations().DeleteInvitation(ctx, active.ID))
		require.ErrorIs(t, s.Invitations().DeleteInvitation(ctx, active.ID), store.ErrNotFound)
	})

	t.Run("sweep removes expired rows", func(t *testing.T) {
		n, err := s.Invitations().DeleteExpiredInvitations(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		n, err = s.Invitations().DeleteExpiredInvitations(ctx, now)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			c := domain.Company{ID: idx.New().String(), Name: "Rolled Back", CreatedAt: time.Now()}
			require.NoError(t, tx.Companies().CreateCompany(ctx, c))
			return boom
		})
		require.ErrorIs(t, err, boom)

		err = s.Companies().CreateCompany(ctx, domain.Company{ID: idx.New().String(), Name: "Rolled Back"})
		require.NoError(t, err, "name must be free again after rollback")
	})

	t.Run("commit on success", func(t *testing.T) {
		id := idx.New().String()
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Companies().CreateCompany(ctx, domain.Company{ID: id, Name: "Committed"})
		}))

		_, err := s.Companies().GetCompanyByID(ctx, id)
		require.NoError(t, err)
	})

	t.Run("no nested transactions", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
