package core

import (
	"fmt"
	"time"
)

// Session is the active account context of one client.
//
// A Session is an immutable value: switching accounts or refreshing the
// verification status builds a new Session instead of mutating this one.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Account    Account    `json:"account"`
	Membership Membership `json:"membership"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewSession pairs an account with the user's membership in it.
func NewSession(id, userID string, account Account, membership Membership) (*Session, error) {
	s := &Session{
		ID:         id,
		UserID:     userID,
		Account:    account,
		Membership: membership,
		CreatedAt:  time.Now(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the session references a single account consistently.
func (s *Session) Validate() error {
	if s == nil {
		return ErrNoActiveSession
	}
	if s.UserID == "" {
		return fmt.Errorf("%w: missing user", ErrMalformedSession)
	}
	if s.Account.ID == "" || s.Account.ID != s.Membership.AccountID {
		return fmt.Errorf("%w: account %q paired with membership of %q", ErrMalformedSession, s.Account.ID, s.Membership.AccountID)
	}
	if s.Membership.UserID != s.UserID {
		return fmt.Errorf("%w: membership belongs to %q, not %q", ErrMalformedSession, s.Membership.UserID, s.UserID)
	}
	if _, err := ParseAccountType(string(s.Account.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if !s.Account.VerificationStatus.Valid() {
		return fmt.Errorf("%w: unknown verification status %q", ErrMalformedSession, s.Account.VerificationStatus)
	}
	if _, err := RoleRank(s.Membership.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	return nil
}

// WithVerificationStatus returns a copy of the session carrying status.
func (s *Session) WithVerificationStatus(status VerificationStatus, at time.Time) *Session {
	next := *s
	next.Account.VerificationStatus = status
	next.Account.UpdatedAt = at
	return &next
}
