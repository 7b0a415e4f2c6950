package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/oagate/core"
)

const membershipColumns = `id, account_id, user_id, role, created_at`

func (a *Adapter) CreateMembership(ctx context.Context, m *core.Membership) error {
	return insertMembership(ctx, a.pool, m)
}

func insertMembership(ctx context.Context, q querier, m *core.Membership) error {
	query := `INSERT INTO public.memberships (id, account_id, user_id, role)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := q.QueryRow(ctx, query, m.ID, m.AccountID, m.UserID, string(m.Role)).Scan(&m.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case codeUniqueViolation:
			return core.ErrMembershipExists
		case codeForeignKeyViolation:
			return core.ErrAccountNotFound
		}
		return err
	}

	return nil
}

func (a *Adapter) GetMembership(ctx context.Context, userID, accountID string) (*core.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM public.memberships WHERE user_id = $1 AND account_id = $2`

	m, err := scanMembership(a.pool.QueryRow(ctx, query, userID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrMembershipNotFound
		}
		return nil, err
	}

	return m, nil
}

func (a *Adapter) GetUserMemberships(ctx context.Context, userID string) ([]*core.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM public.memberships
	          WHERE user_id = $1 ORDER BY created_at, account_id`

	rows, err := a.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*core.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return memberships, nil
}

func (a *Adapter) DeleteMembership(ctx context.Context, userID, accountID string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.memberships WHERE user_id = $1 AND account_id = $2`, userID, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrMembershipNotFound
	}
	return nil
}

func scanMembership(row pgx.Row) (*core.Membership, error) {
	var (
		m    core.Membership
		role string
	)
	if err := row.Scan(&m.ID, &m.AccountID, &m.UserID, &role, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Role = core.Role(role)
	return &m, nil
}
