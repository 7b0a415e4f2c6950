package pgx

import (
	"context"
	"fmt"
)

// Schema creates the account and membership tables. A partial unique index
// keeps a single owner per account.
const Schema = `
CREATE TABLE IF NOT EXISTS public.accounts (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	type                TEXT NOT NULL CHECK (type IN ('creator', 'business')),
	verification_status TEXT NOT NULL DEFAULT 'unverified'
	                    CHECK (verification_status IN ('unverified', 'pending', 'verified')),
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS public.memberships (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES public.accounts (id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('support', 'admin', 'owner')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (account_id, user_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS memberships_single_owner
	ON public.memberships (account_id) WHERE role = 'owner';

CREATE INDEX IF NOT EXISTS memberships_user_created
	ON public.memberships (user_id, created_at);
`

// Migrate applies Schema. It is safe to run on every start.
func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
