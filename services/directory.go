package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/oagate/core"
)

// Directory resolves accounts and memberships from storage, caching
// memberships when a cache is configured.
type Directory struct {
	storage core.Storage
	cache   core.Cache // optional, can be nil if caching is disabled
}

var _ core.MembershipLookup = (*Directory)(nil)

func NewDirectory(storage core.Storage, cache core.Cache) *Directory {
	return &Directory{storage: storage, cache: cache}
}

func (d *Directory) FetchMembership(ctx context.Context, userID, accountID string) (*core.Membership, error) {
	key := core.MembershipCacheKey(userID, accountID)

	if d.cache != nil {
		if m, err := d.cache.Get(key); err == nil && m != nil {
			return m, nil
		}
	}

	m, err := d.storage.GetMembership(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, core.ErrMembershipNotFound
	}

	if d.cache != nil {
		// We don't fail the lookup if caching fails
		_ = d.cache.Set(key, m)
	}

	return m, nil
}

func (d *Directory) FetchAccount(ctx context.Context, accountID string) (*core.Account, error) {
	a, err := d.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, core.ErrAccountNotFound
	}
	return a, nil
}

func (d *Directory) ListMemberships(ctx context.Context, userID string) ([]*core.Membership, error) {
	return d.storage.GetUserMemberships(ctx, userID)
}

// ListAccounts returns every account the user belongs to with the user's
// membership in it, oldest membership first.
func (d *Directory) ListAccounts(ctx context.Context, userID string) ([]core.AccountMembership, error) {
	if userID == "" {
		return nil, core.ErrUserRequired
	}

	memberships, err := d.storage.GetUserMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	out := make([]core.AccountMembership, 0, len(memberships))
	for _, m := range memberships {
		a, err := d.FetchAccount(ctx, m.AccountID)
		if err != nil {
			if errors.Is(err, core.ErrAccountNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get account %s: %w", m.AccountID, err)
		}
		out = append(out, core.AccountMembership{Account: a, Membership: m})
	}
	return out, nil
}

// Forget drops a cached membership after it changed in storage.
func (d *Directory) Forget(userID, accountID string) {
	if d.cache != nil {
		_ = d.cache.Delete(core.MembershipCacheKey(userID, accountID))
	}
}
