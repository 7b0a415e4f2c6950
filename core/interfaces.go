package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// AccountStorage defines account-related database operations
type AccountStorage interface {
	// CreateAccountWithOwner persists the account and its single owner
	// membership together, or neither.
	CreateAccountWithOwner(ctx context.Context, a *Account, owner *Membership) error
	GetAccountByID(ctx context.Context, id string) (*Account, error)

	// AdvanceVerificationStatus moves the account from one status to the
	// next only if it is still in from. Returns ErrInvalidTransition otherwise.
	AdvanceVerificationStatus(ctx context.Context, id string, from, to VerificationStatus) (*Account, error)
}

// MembershipStorage defines membership-related database operations
type MembershipStorage interface {
	CreateMembership(ctx context.Context, m *Membership) error
	GetMembership(ctx context.Context, userID, accountID string) (*Membership, error)

	// GetUserMemberships returns the user's memberships, oldest first
	GetUserMemberships(ctx context.Context, userID string) ([]*Membership, error)

	DeleteMembership(ctx context.Context, userID, accountID string) error
}

type Storage interface {
	AccountStorage
	MembershipStorage
}

// ============================================
// LOOKUP PORT (consumed by session contexts)
// ============================================

// MembershipLookup resolves the account and membership a session switches to
type MembershipLookup interface {
	FetchMembership(ctx context.Context, userID, accountID string) (*Membership, error)
	FetchAccount(ctx context.Context, accountID string) (*Account, error)
	ListMemberships(ctx context.Context, userID string) ([]*Membership, error)
}

// VerificationListener observes verification status changes made by the
// external verification collaborator.
type VerificationListener interface {
	OnVerificationStatusChanged(accountID string, status VerificationStatus) error
}

// MembershipListener observes memberships removed from storage.
type MembershipListener interface {
	OnMembershipRemoved(ctx context.Context, userID, accountID string) error
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines membership caching operations
type Cache interface {
	Get(key string) (*Membership, error)
	Set(key string, membership *Membership) error
	Delete(key string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// MembershipCacheKey is the cache key of a user's membership in an account.
func MembershipCacheKey(userID, accountID string) string {
	return userID + ":" + accountID
}
