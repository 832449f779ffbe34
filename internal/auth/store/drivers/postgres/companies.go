package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

type companiesRepo struct {
	q querier
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO companies (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt.UTC(),
	)
	if err != nil {
		if cerr := conflict(err); cerr != nil {
			return cerr
		}
		return oops.Code("COMPANY_CREATE_FAILED").With("name", c.Name).Wrap(err)
	}
	return nil
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if nerr := notFound(err, "COMPANY_NOT_FOUND"); nerr != nil {
			return domain.Company{}, nerr
		}
		return domain.Company{}, oops.Code("COMPANY_GET_FAILED").With("id", id).Wrap(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
