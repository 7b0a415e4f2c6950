package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lborres/oagate/core"
	"github.com/lborres/oagate/pkg/crypto"
)

// SessionContext holds the single active (Account, Membership) pair of one
// client.
//
// The active Session is replaced as a whole through an atomic pointer, so a
// concurrent reader never observes an account paired with another account's
// membership.
type SessionContext struct {
	userID  string
	lookup  core.MembershipLookup
	router  *Router
	current atomic.Pointer[core.Session]
}

func NewSessionContext(userID string, lookup core.MembershipLookup, router *Router) *SessionContext {
	return &SessionContext{userID: userID, lookup: lookup, router: router}
}

func (c *SessionContext) UserID() string {
	return c.userID
}

// Current returns the active session, or nil before an account is selected.
func (c *SessionContext) Current() *core.Session {
	return c.current.Load()
}

// Establish selects the user's oldest membership as the active account.
// A user without memberships keeps no active session until one is created.
func (c *SessionContext) Establish(ctx context.Context) (*core.Session, error) {
	if c.userID == "" {
		return nil, core.ErrUserRequired
	}

	session, err := c.oldest(ctx)
	if err != nil {
		return nil, err
	}

	c.current.Store(session)
	if session == nil {
		return nil, nil
	}
	return c.catchUp(ctx, session), nil
}

// SwitchAccount atomically replaces the active session with one for
// accountID. On failure the previous session stays active.
func (c *SessionContext) SwitchAccount(ctx context.Context, accountID string) (*core.Session, error) {
	session, err := c.build(ctx, accountID)
	if err != nil {
		return nil, err
	}

	c.current.Store(session)
	return c.catchUp(ctx, session), nil
}

// OnMembershipRemoved moves the client off an account the user no longer
// belongs to. The oldest remaining membership becomes active, or none.
func (c *SessionContext) OnMembershipRemoved(ctx context.Context, userID, accountID string) error {
	for {
		cur := c.current.Load()
		if cur == nil || cur.UserID != userID || cur.Account.ID != accountID {
			return nil
		}

		next, err := c.oldest(ctx)
		if err != nil {
			// never keep serving the removed membership
			c.current.CompareAndSwap(cur, nil)
			return err
		}

		if c.current.CompareAndSwap(cur, next) {
			if next != nil {
				c.catchUp(ctx, next)
			}
			return nil
		}
	}
}

// oldest builds a session for the user's oldest membership, or returns nil
// when the user has none.
func (c *SessionContext) oldest(ctx context.Context) (*core.Session, error) {
	memberships, err := c.lookup.ListMemberships(ctx, c.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return c.build(ctx, memberships[0].AccountID)
}

func (c *SessionContext) build(ctx context.Context, accountID string) (*core.Session, error) {
	m, err := c.lookup.FetchMembership(ctx, c.userID, accountID)
	if err != nil {
		if errors.Is(err, core.ErrMembershipNotFound) || errors.Is(err, core.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	a, err := c.lookup.FetchAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	id, err := crypto.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	return core.NewSession(id, c.userID, *a, *m)
}

// catchUp re-reads the account once session is visible. A verification
// change notified between the fetch in build and the store was ignored by
// OnVerificationStatusChanged, but storage already holds it.
func (c *SessionContext) catchUp(ctx context.Context, session *core.Session) *core.Session {
	a, err := c.lookup.FetchAccount(ctx, session.Account.ID)
	if err == nil && session.Account.VerificationStatus.Precedes(a.VerificationStatus) {
		_ = c.OnVerificationStatusChanged(a.ID, a.VerificationStatus)
	}

	if cur := c.current.Load(); cur != nil && cur.ID == session.ID {
		return cur
	}
	return session
}

// End drops the active session (logout).
func (c *SessionContext) End() {
	c.current.Store(nil)
}

// OnVerificationStatusChanged refreshes the active session when its account
// moved forward. Changes for other accounts are ignored; backward changes are
// rejected and leave the session untouched.
func (c *SessionContext) OnVerificationStatusChanged(accountID string, status core.VerificationStatus) error {
	for {
		cur := c.current.Load()
		if cur == nil || cur.Account.ID != accountID {
			return nil
		}
		if cur.Account.VerificationStatus == status {
			return nil
		}
		if !cur.Account.VerificationStatus.Precedes(status) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, cur.Account.VerificationStatus, status)
		}

		next := cur.WithVerificationStatus(status, time.Now())
		if c.current.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Navigate resolves destinationID against the active session.
func (c *SessionContext) Navigate(destinationID string) (core.Outcome, error) {
	return c.router.Navigate(destinationID, c.Current())
}

// CurrentCapabilities returns the destination ids that render as clickable.
func (c *SessionContext) CurrentCapabilities() ([]string, error) {
	return c.router.Capabilities(c.Current())
}

// Menu returns the visible destinations, locked ones included.
func (c *SessionContext) Menu() ([]core.MenuItem, error) {
	return c.router.Menu(c.Current())
}
