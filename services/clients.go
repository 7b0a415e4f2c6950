package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lborres/oagate/core"
	"github.com/lborres/oagate/pkg/crypto"
)

type ClientConfig struct {
	MaxAge time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxAge: 24 * time.Hour,
	}
}

type LoginResult struct {
	Session *core.Session `json:"session"` // nil until the user owns or joins an account
	Token   string        `json:"token"`   // The raw token (not the hash)
}

type client struct {
	sc        *SessionContext
	expiresAt time.Time
}

// ClientSessions keeps one SessionContext per user-facing client, keyed by
// the hash of the client's bearer token.
type ClientSessions struct {
	config  ClientConfig
	lookup  core.MembershipLookup
	router  *Router
	logger  *slog.Logger
	mu      sync.RWMutex
	clients map[string]*client // key: token hash
}

var (
	_ core.VerificationListener = (*ClientSessions)(nil)
	_ core.MembershipListener   = (*ClientSessions)(nil)
)

func NewClientSessions(config ClientConfig, lookup core.MembershipLookup, router *Router, logger *slog.Logger) *ClientSessions {
	if config.MaxAge == 0 {
		config.MaxAge = DefaultClientConfig().MaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientSessions{
		config:  config,
		lookup:  lookup,
		router:  router,
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// OnLoginSucceeded opens a client for a user authenticated upstream and
// establishes its first session.
func (cs *ClientSessions) OnLoginSucceeded(ctx context.Context, userID string) (*LoginResult, error) {
	if userID == "" {
		return nil, core.ErrUserRequired
	}

	sc := NewSessionContext(userID, cs.lookup, cs.router)
	session, err := sc.Establish(ctx)
	if err != nil {
		return nil, err
	}

	token, err := crypto.NewToken()
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	cs.clients[token.Hash] = &client{
		sc:        sc,
		expiresAt: time.Now().Add(cs.config.MaxAge),
	}
	cs.mu.Unlock()

	attrs := []any{"user_id", userID}
	if session != nil {
		attrs = append(attrs, "account_id", session.Account.ID)
	}
	cs.logger.Info("console session opened", attrs...)

	return &LoginResult{Session: session, Token: token.Raw}, nil
}

// Get returns the SessionContext of the client holding token.
func (cs *ClientSessions) Get(token string) (*SessionContext, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	cs.mu.RLock()
	c, ok := cs.clients[tokenHash]
	cs.mu.RUnlock()
	if !ok {
		return nil, core.ErrInvalidToken
	}

	if time.Now().After(c.expiresAt) {
		cs.mu.Lock()
		delete(cs.clients, tokenHash)
		cs.mu.Unlock()
		return nil, core.ErrSessionExpired
	}

	return c.sc, nil
}

// Logout ends the client's session and forgets the token.
func (cs *ClientSessions) Logout(token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	cs.mu.Lock()
	c, ok := cs.clients[tokenHash]
	delete(cs.clients, tokenHash)
	cs.mu.Unlock()

	if !ok {
		return core.ErrInvalidToken
	}

	c.sc.End()
	cs.logger.Info("console session closed", "user_id", c.sc.UserID())
	return nil
}

// OnVerificationStatusChanged forwards a status change to every client
// whose active account is accountID.
func (cs *ClientSessions) OnVerificationStatusChanged(accountID string, status core.VerificationStatus) error {
	cs.mu.RLock()
	contexts := make([]*SessionContext, 0, len(cs.clients))
	for _, c := range cs.clients {
		contexts = append(contexts, c.sc)
	}
	cs.mu.RUnlock()

	var firstErr error
	for _, sc := range contexts {
		if err := sc.OnVerificationStatusChanged(accountID, status); err != nil {
			cs.logger.Warn("session refresh rejected",
				"account_id", accountID,
				"status", string(status),
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// OnMembershipRemoved moves every client of userID that is active on
// accountID to another of the user's accounts.
func (cs *ClientSessions) OnMembershipRemoved(ctx context.Context, userID, accountID string) error {
	cs.mu.RLock()
	var contexts []*SessionContext
	for _, c := range cs.clients {
		if c.sc.UserID() == userID {
			contexts = append(contexts, c.sc)
		}
	}
	cs.mu.RUnlock()

	var firstErr error
	for _, sc := range contexts {
		if err := sc.OnMembershipRemoved(ctx, userID, accountID); err != nil {
			cs.logger.Warn("session re-establish failed",
				"account_id", accountID,
				"user_id", userID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DeleteExpired drops expired clients and returns how many were removed.
func (cs *ClientSessions) DeleteExpired() int {
	now := time.Now()

	cs.mu.Lock()
	defer cs.mu.Unlock()

	count := 0
	for k, c := range cs.clients {
		if now.After(c.expiresAt) {
			c.sc.End()
			delete(cs.clients, k)
			count++
		}
	}
	return count
}

func (cs *ClientSessions) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.clients)
}
