package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lborres/oagate/core"
	"github.com/lborres/oagate/pkg/crypto"
)

// CreateAccountInput contains the data needed to create an official account
type CreateAccountInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateAccountResult contains the new account and its owner membership
type CreateAccountResult struct {
	Account    *core.Account    `json:"account"`
	Membership *core.Membership `json:"membership"`
}

type AccountService struct {
	storage   core.Storage
	directory *Directory
	listeners []core.VerificationListener
	removals  []core.MembershipListener
	logger    *slog.Logger
}

func NewAccountService(storage core.Storage, directory *Directory, logger *slog.Logger, listeners ...core.VerificationListener) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		storage:   storage,
		directory: directory,
		listeners: listeners,
		logger:    logger,
	}
}

// Subscribe adds a listener notified after every verification status change.
// Not safe to call concurrently with status changes; wire listeners at startup.
func (s *AccountService) Subscribe(l core.VerificationListener) {
	s.listeners = append(s.listeners, l)
}

// SubscribeMembership adds a listener notified after a membership is removed.
// Wire it at startup, like Subscribe.
func (s *AccountService) SubscribeMembership(l core.MembershipListener) {
	s.removals = append(s.removals, l)
}

// CreateAccount creates an unverified account with userID as its only owner
func (s *AccountService) CreateAccount(ctx context.Context, userID string, input CreateAccountInput) (*CreateAccountResult, error) {
	if userID == "" {
		return nil, core.ErrUserRequired
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, core.ErrAccountNameRequired
	}

	accountType, err := core.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	accountID, err := crypto.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account id: %w", err)
	}
	membershipID, err := crypto.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership id: %w", err)
	}

	now := time.Now()
	account := &core.Account{
		ID:                 accountID,
		Name:               name,
		Type:               accountType,
		VerificationStatus: core.VerificationUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	owner := &core.Membership{
		ID:        membershipID,
		AccountID: accountID,
		UserID:    userID,
		Role:      core.RoleOwner,
		CreatedAt: now,
	}

	if err := s.storage.CreateAccountWithOwner(ctx, account, owner); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created",
		"account_id", account.ID,
		"account_type", string(account.Type),
		"owner", userID,
	)

	return &CreateAccountResult{Account: account, Membership: owner}, nil
}

// AddMember grants userID a staff role in the account. Only the owner may
// add staff and the owner role cannot be granted.
func (s *AccountService) AddMember(ctx context.Context, actorUserID, accountID, userID string, role core.Role) (*core.Membership, error) {
	if userID == "" {
		return nil, core.ErrUserRequired
	}
	if _, err := core.RoleRank(role); err != nil {
		return nil, err
	}
	if role == core.RoleOwner {
		return nil, core.ErrOwnerAlreadyAssigned
	}

	actor, err := s.directory.FetchMembership(ctx, actorUserID, accountID)
	if err != nil {
		if errors.Is(err, core.ErrMembershipNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if actor.Role != core.RoleOwner {
		return nil, core.ErrForbidden
	}

	id, err := crypto.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership id: %w", err)
	}

	m := &core.Membership{
		ID:        id,
		AccountID: accountID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := s.storage.CreateMembership(ctx, m); err != nil {
		if errors.Is(err, core.ErrMembershipExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.logger.Info("member added", "account_id", accountID, "user_id", userID, "role", string(role))
	return m, nil
}

// LeaveAccount removes the user's membership. The owner cannot leave.
func (s *AccountService) LeaveAccount(ctx context.Context, userID, accountID string) error {
	m, err := s.directory.FetchMembership(ctx, userID, accountID)
	if err != nil {
		if errors.Is(err, core.ErrMembershipNotFound) {
			return core.ErrAccountNotFound
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if m.Role == core.RoleOwner {
		return core.ErrOwnerCannotLeave
	}

	if err := s.storage.DeleteMembership(ctx, userID, accountID); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	s.directory.Forget(userID, accountID)

	s.logger.Info("member left", "account_id", accountID, "user_id", userID)

	for _, l := range s.removals {
		if err := l.OnMembershipRemoved(ctx, userID, accountID); err != nil {
			s.logger.Warn("membership listener failed", "account_id", accountID, "user_id", userID, "error", err)
		}
	}
	return nil
}

// RequestVerification starts verification on behalf of a console user. Only
// the owner may submit; approval comes from the verification collaborator.
func (s *AccountService) RequestVerification(ctx context.Context, actorUserID, accountID string) (*core.Account, error) {
	actor, err := s.directory.FetchMembership(ctx, actorUserID, accountID)
	if err != nil {
		if errors.Is(err, core.ErrMembershipNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if actor.Role != core.RoleOwner {
		return nil, core.ErrForbidden
	}
	return s.StartVerification(ctx, accountID)
}

// StartVerification moves an unverified account to pending.
func (s *AccountService) StartVerification(ctx context.Context, accountID string) (*core.Account, error) {
	return s.AdvanceVerification(ctx, accountID, core.VerificationPending)
}

// ApproveVerification moves a pending account to verified.
func (s *AccountService) ApproveVerification(ctx context.Context, accountID string) (*core.Account, error) {
	return s.AdvanceVerification(ctx, accountID, core.VerificationVerified)
}

// AdvanceVerification performs one forward verification step and notifies
// listeners once the new status is stored.
func (s *AccountService) AdvanceVerification(ctx context.Context, accountID string, next core.VerificationStatus) (*core.Account, error) {
	current, err := s.directory.FetchAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !current.VerificationStatus.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, current.VerificationStatus, next)
	}

	updated, err := s.storage.AdvanceVerificationStatus(ctx, accountID, current.VerificationStatus, next)
	if err != nil {
		if errors.Is(err, core.ErrInvalidTransition) || errors.Is(err, core.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update verification status: %w", err)
	}

	s.logger.Info("verification status changed",
		"account_id", accountID,
		"from", string(current.VerificationStatus),
		"to", string(next),
	)

	for _, l := range s.listeners {
		if err := l.OnVerificationStatusChanged(accountID, next); err != nil {
			s.logger.Warn("verification listener failed", "account_id", accountID, "error", err)
		}
	}

	return updated, nil
}
