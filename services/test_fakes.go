package services

import (
	"context"
	"sort"
	"sync"

	"github.com/lborres/oagate/core"
)

// FakeStorage is a test-only fake implementing core.Storage.
// It keeps accounts and memberships in maps and exposes error fields for
// behavior injection.
type FakeStorage struct {
	mu          sync.RWMutex
	accounts    map[string]*core.Account
	memberships map[string]*core.Membership // key: core.MembershipCacheKey

	CreateErr     error
	GetAccountErr error
	MembershipErr error
	AdvanceErr    error
	DeleteErr     error

	// MembershipReads counts GetMembership calls that reached storage
	MembershipReads int
}

var _ core.Storage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		accounts:    make(map[string]*core.Account),
		memberships: make(map[string]*core.Membership),
	}
}

// Seed stores an account and memberships directly, bypassing validation.
func (f *FakeStorage) Seed(a *core.Account, members ...*core.Membership) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a != nil {
		f.accounts[a.ID] = a
	}
	for _, m := range members {
		f.memberships[core.MembershipCacheKey(m.UserID, m.AccountID)] = m
	}
}

func (f *FakeStorage) CreateAccountWithOwner(ctx context.Context, a *core.Account, owner *core.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.accounts[a.ID] = a
	f.memberships[core.MembershipCacheKey(owner.UserID, owner.AccountID)] = owner
	return nil
}

func (f *FakeStorage) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetAccountErr != nil {
		return nil, f.GetAccountErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *FakeStorage) AdvanceVerificationStatus(ctx context.Context, id string, from, to core.VerificationStatus) (*core.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AdvanceErr != nil {
		return nil, f.AdvanceErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	if a.VerificationStatus != from {
		return nil, core.ErrInvalidTransition
	}
	a.VerificationStatus = to
	cp := *a
	return &cp, nil
}

func (f *FakeStorage) CreateMembership(ctx context.Context, m *core.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	key := core.MembershipCacheKey(m.UserID, m.AccountID)
	if _, exists := f.memberships[key]; exists {
		return core.ErrMembershipExists
	}
	f.memberships[key] = m
	return nil
}

func (f *FakeStorage) GetMembership(ctx context.Context, userID, accountID string) (*core.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MembershipReads++
	if f.MembershipErr != nil {
		return nil, f.MembershipErr
	}
	m, ok := f.memberships[core.MembershipCacheKey(userID, accountID)]
	if !ok {
		return nil, core.ErrMembershipNotFound
	}
	return m, nil
}

func (f *FakeStorage) GetUserMemberships(ctx context.Context, userID string) ([]*core.Membership, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.MembershipErr != nil {
		return nil, f.MembershipErr
	}
	var out []*core.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *FakeStorage) DeleteMembership(ctx context.Context, userID, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	key := core.MembershipCacheKey(userID, accountID)
	if _, ok := f.memberships[key]; !ok {
		return core.ErrMembershipNotFound
	}
	delete(f.memberships, key)
	return nil
}

// FakeListener records verification notifications.
type FakeListener struct {
	mu    sync.Mutex
	Calls []core.VerificationStatus
	Err   error
}

func (l *FakeListener) OnVerificationStatusChanged(accountID string, status core.VerificationStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, status)
	return l.Err
}
