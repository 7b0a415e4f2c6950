package services

import (
	"errors"
	"log/slog"

	"github.com/lborres/oagate/core"
)

// Router translates a destination id and a session into an Outcome.
type Router struct {
	registry           *Registry
	logger             *slog.Logger
	defaultDestination string
}

// NewRouter redirects denials to the dashboard. Use NewRouterWithDefault
// for a catalog without one.
func NewRouter(registry *Registry, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{registry: registry, logger: logger, defaultDestination: DestinationDashboard}
}

// NewRouterWithDefault redirects denials to defaultID, which must pass
// Registry.CheckDefault.
func NewRouterWithDefault(registry *Registry, logger *slog.Logger, defaultID string) (*Router, error) {
	if err := registry.CheckDefault(defaultID); err != nil {
		return nil, err
	}
	r := NewRouter(registry, logger)
	r.defaultDestination = defaultID
	return r, nil
}

// DefaultDestination is where denied navigation is redirected.
func (r *Router) DefaultDestination() string {
	return r.defaultDestination
}

// Navigate never fails for an unknown or gated destination; those come back
// as a denied Outcome. It fails only when the session is absent or malformed.
func (r *Router) Navigate(destinationID string, session *core.Session) (core.Outcome, error) {
	if err := session.Validate(); err != nil {
		if errors.Is(err, core.ErrInvalidRole) {
			r.logger.Error("session carries an invalid role",
				"account_id", session.Account.ID,
				"user_id", session.UserID,
				"error", err,
			)
		}
		return core.Outcome{}, err
	}

	d, ok := r.registry.Lookup(destinationID)
	if !ok {
		r.deny(destinationID, core.DenyNotFound, session)
		return core.Deny(destinationID, core.DenyNotFound), nil
	}

	visibility, err := core.Evaluate(d, session.Account, session.Membership)
	if err != nil {
		// roles are validated above and in the registry
		r.logger.Error("gate evaluation failed", "destination", destinationID, "error", err)
		return core.Outcome{}, err
	}

	switch visibility {
	case core.VisibilityHidden:
		r.deny(destinationID, core.DenyHidden, session)
		return core.Deny(destinationID, core.DenyHidden), nil
	case core.VisibilityLocked:
		r.deny(destinationID, core.DenyLocked, session)
		return core.Deny(destinationID, core.DenyLocked), nil
	}

	return core.Allow(destinationID), nil
}

func (r *Router) deny(destinationID string, reason core.DenyReason, session *core.Session) {
	r.logger.Debug("navigation denied",
		"destination", destinationID,
		"reason", string(reason),
		"account_id", session.Account.ID,
		"account_type", string(session.Account.Type),
		"role", string(session.Membership.Role),
	)
}

// Menu returns the non-hidden destinations for the session in catalog order.
func (r *Router) Menu(session *core.Session) ([]core.MenuItem, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	var items []core.MenuItem
	for _, d := range r.registry.DestinationsFor(session.Account.Type) {
		visibility, err := core.Evaluate(d, session.Account, session.Membership)
		if err != nil {
			return nil, err
		}
		if visibility == core.VisibilityHidden {
			continue
		}
		items = append(items, core.MenuItem{Destination: d, Visibility: visibility})
	}
	return items, nil
}

// Capabilities returns the ids of destinations the session may open.
func (r *Router) Capabilities(session *core.Session) ([]string, error) {
	items, err := r.Menu(session)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Visibility == core.VisibilityAllowed {
			ids = append(ids, item.Destination.ID)
		}
	}
	return ids, nil
}
