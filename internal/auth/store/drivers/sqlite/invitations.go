package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, email, company_id, role, token_hash, expires_at, created_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invitations (`+invitationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.CompanyID, string(inv.Role), inv.TokenHash,
		toMillis(inv.ExpiresAt), toMillis(inv.CreatedAt),
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetActiveInvitationByTokenHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Invitation, error) {
	return r.scan(r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ? AND expires_at > ?`,
		hash, toMillis(now),
	))
}

func (r *invitationsRepo) GetActiveInvitationByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) (domain.Invitation, error) {
	return r.scan(r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE email = ? AND expires_at > ?`,
		email, toMillis(now),
	))
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredInvitationsByEmail(ctx context.Context, email string, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM invitations WHERE email = ? AND expires_at <= ?`,
		email, toMillis(now),
	)
	return err
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invitations WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationsRepo) scan(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv                  domain.Invitation
		role                 string
		expiresAt, createdAt int64
	)
	err := row.Scan(&inv.ID, &inv.Email, &inv.CompanyID, &role, &inv.TokenHash, &expiresAt, &createdAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Role = domain.Role(role)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CreatedAt = fromMillis(createdAt)
	return inv, nil
}
