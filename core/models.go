package core

import "time"

type AccountType string

const (
	AccountTypeCreator  AccountType = "creator"
	AccountTypeBusiness AccountType = "business"
)

func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeCreator, AccountTypeBusiness:
		return t, nil
	}
	return "", ErrInvalidAccountType
}

// VerificationStatus only moves forward: unverified -> pending -> verified
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified:
		return true
	}
	return false
}

func (s VerificationStatus) rank() int {
	switch s {
	case VerificationPending:
		return 1
	case VerificationVerified:
		return 2
	}
	return 0
}

// Precedes reports whether next lies strictly later on the forward path.
func (s VerificationStatus) Precedes(next VerificationStatus) bool {
	return s.Valid() && next.Valid() && s.rank() < next.rank()
}

// CanAdvanceTo reports whether next is the single legal step after s.
// No transition ever leaves verified.
func (s VerificationStatus) CanAdvanceTo(next VerificationStatus) bool {
	switch s {
	case VerificationUnverified:
		return next == VerificationPending
	case VerificationPending:
		return next == VerificationVerified
	}
	return false
}

// Account represents an official account being managed
//
// This is the "tenant" - what someone manages
type Account struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Type               AccountType        `json:"type"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Membership ties a user to an account with a role scoped to that account
type Membership struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Destination is a named console screen subject to gating
type Destination struct {
	ID                   string        `json:"id" yaml:"id"`
	Label                string        `json:"label" yaml:"label"`
	RequiredAccountTypes []AccountType `json:"requiredAccountTypes" yaml:"accountTypes"`
	RequiresVerification bool          `json:"requiresVerification" yaml:"requiresVerification"`
	MinimumRole          Role          `json:"minimumRole" yaml:"minimumRole"`
}

// Allows reports whether accounts of type t may see the destination at all.
func (d Destination) Allows(t AccountType) bool {
	for _, allowed := range d.RequiredAccountTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// AccountMembership pairs an account with the caller's membership in it.
// The model returned to the account selection screen
type AccountMembership struct {
	Account    *Account    `json:"account"`
	Membership *Membership `json:"membership"`
}
