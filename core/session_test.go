package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	valid := func() (Account, Membership) {
		return account(AccountTypeBusiness, VerificationPending), member(RoleAdmin)
	}

	tests := []struct {
		name    string
		userID  string
		mutate  func(*Account, *Membership)
		wantErr error
	}{
		{name: "consistent pair", userID: "user-1"},
		{name: "missing user", userID: "", wantErr: ErrMalformedSession},
		{
			name:    "membership of another account",
			userID:  "user-1",
			mutate:  func(a *Account, m *Membership) { m.AccountID = "acct-2" },
			wantErr: ErrMalformedSession,
		},
		{
			name:    "membership of another user",
			userID:  "user-1",
			mutate:  func(a *Account, m *Membership) { m.UserID = "user-2" },
			wantErr: ErrMalformedSession,
		},
		{
			name:    "unknown account type",
			userID:  "user-1",
			mutate:  func(a *Account, m *Membership) { a.Type = "enterprise" },
			wantErr: ErrMalformedSession,
		},
		{
			name:    "unknown verification status",
			userID:  "user-1",
			mutate:  func(a *Account, m *Membership) { a.VerificationStatus = "rejected" },
			wantErr: ErrMalformedSession,
		},
		{
			name:    "unknown role",
			userID:  "user-1",
			mutate:  func(a *Account, m *Membership) { m.Role = "guest" },
			wantErr: ErrInvalidRole,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			a, m := valid()
			if test.mutate != nil {
				test.mutate(&a, &m)
			}

			// Act
			s, err := NewSession("sess-1", test.userID, a, m)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewSession() error = %v; want %v", err, test.wantErr)
			}
			if test.wantErr == nil && s == nil {
				t.Fatal("NewSession() returned nil session")
			}
			if test.wantErr != nil && s != nil {
				t.Error("NewSession() should not return a session on error")
			}
		})
	}
}

func TestSessionValidateNil(t *testing.T) {
	var s *Session
	if err := s.Validate(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Validate() on nil session = %v; want ErrNoActiveSession", err)
	}
}

func TestSessionWithVerificationStatusCopies(t *testing.T) {
	s, err := NewSession("sess-1", "user-1", account(AccountTypeBusiness, VerificationPending), member(RoleSupport))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	at := time.Now().Add(time.Minute)

	next := s.WithVerificationStatus(VerificationVerified, at)

	if s.Account.VerificationStatus != VerificationPending {
		t.Error("original session must not be mutated")
	}
	if next.Account.VerificationStatus != VerificationVerified {
		t.Errorf("copy status = %s; want verified", next.Account.VerificationStatus)
	}
	if !next.Account.UpdatedAt.Equal(at) {
		t.Error("copy should carry the update time")
	}
	if next.ID != s.ID || next.Membership != s.Membership {
		t.Error("copy should keep session id and membership")
	}
}
