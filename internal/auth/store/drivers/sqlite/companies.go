package sqlite

import (
	"context"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

type companiesRepo struct {
	q querier
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO companies (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, toMillis(c.CreatedAt),
	)
	return mapConflict(err)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var (
		c         domain.Company
		createdAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &createdAt)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}
