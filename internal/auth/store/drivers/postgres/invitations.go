package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, email, company_id, role, token_hash, expires_at, created_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO invitations (`+invitationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.Email, inv.CompanyID, string(inv.Role), inv.TokenHash,
		inv.ExpiresAt.UTC(), inv.CreatedAt.UTC(),
	)
	if err != nil {
		if cerr := conflict(err); cerr != nil {
			return cerr
		}
		return oops.Code("INVITATION_CREATE_FAILED").With("email", inv.Email).Wrap(err)
	}
	return nil
}

func (r *invitationsRepo) GetActiveInvitationByTokenHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Invitation, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = $1 AND expires_at > $2`,
		hash, now.UTC(),
	)
	inv, err := scanInvitation(row)
	if err != nil {
		if nerr := notFound(err, "INVITATION_NOT_FOUND"); nerr != nil {
			return domain.Invitation{}, nerr
		}
		return domain.Invitation{}, oops.Code("INVITATION_GET_FAILED").Wrap(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetActiveInvitationByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) (domain.Invitation, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE email = $1 AND expires_at > $2`,
		email, now.UTC(),
	)
	inv, err := scanInvitation(row)
	if err != nil {
		if nerr := notFound(err, "INVITATION_NOT_FOUND"); nerr != nil {
			return domain.Invitation{}, nerr
		}
		return domain.Invitation{}, oops.Code("INVITATION_GET_FAILED").With("email", email).Wrap(err)
	}
	return inv, nil
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return oops.Code("INVITATION_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("INVITATION_NOT_FOUND").With("id", id).Wrap(store.ErrNotFound)
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredInvitationsByEmail(ctx context.Context, email string, now time.Time) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM invitations WHERE email = $1 AND expires_at <= $2`,
		email, now.UTC(),
	)
	if err != nil {
		return oops.Code("INVITATION_DELETE_FAILED").With("email", email).Wrap(err)
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM invitations WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, oops.Code("INVITATION_SWEEP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanInvitation(row pgx.Row) (domain.Invitation, error) {
	var (
		inv  domain.Invitation
		role string
	)
	err := row.Scan(&inv.ID, &inv.Email, &inv.CompanyID, &role, &inv.TokenHash, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Role = domain.Role(role)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}
