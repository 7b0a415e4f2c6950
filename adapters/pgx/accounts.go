package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/oagate/core"
)

const accountColumns = `id, name, type, verification_status, created_at, updated_at`

func (a *Adapter) CreateAccountWithOwner(ctx context.Context, acc *core.Account, owner *core.Membership) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO public.accounts (id, name, type, verification_status)
		          VALUES ($1, $2, $3, $4)
		          RETURNING created_at, updated_at`

		err := tx.QueryRow(ctx, query,
			acc.ID, acc.Name, string(acc.Type), string(acc.VerificationStatus),
		).Scan(&acc.CreatedAt, &acc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}

		return insertMembership(ctx, tx, owner)
	})
}

func (a *Adapter) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM public.accounts WHERE id = $1`

	acc, err := scanAccount(a.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}

	return acc, nil
}

// AdvanceVerificationStatus is a compare-and-set on the stored status.
func (a *Adapter) AdvanceVerificationStatus(ctx context.Context, id string, from, to core.VerificationStatus) (*core.Account, error) {
	query := `UPDATE public.accounts SET verification_status = $3, updated_at = now()
	          WHERE id = $1 AND verification_status = $2
	          RETURNING ` + accountColumns

	acc, err := scanAccount(a.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := a.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM public.accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.ErrAccountNotFound
	}
	return nil, fmt.Errorf("%w: account %s is no longer %s", core.ErrInvalidTransition, id, from)
}

func scanAccount(row pgx.Row) (*core.Account, error) {
	var (
		acc            core.Account
		accountType    string
		verificationSt string
	)
	err := row.Scan(&acc.ID, &acc.Name, &accountType, &verificationSt, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	acc.Type = core.AccountType(accountType)
	acc.VerificationStatus = core.VerificationStatus(verificationSt)
	return &acc, nil
}
