package services

import (
	"fmt"

	"github.com/lborres/oagate/core"
)

// Destination ids of the default catalog
const (
	DestinationDashboard = "dashboard"
	DestinationPosts     = "posts"
	DestinationProfile   = "profile"
	DestinationMenu      = "menu"
	DestinationInbox     = "inbox"
	DestinationAnalytics = "analytics"
	DestinationMiniApps  = "miniapps"
)

var allAccountTypes = []core.AccountType{core.AccountTypeCreator, core.AccountTypeBusiness}

// DefaultDestinations returns the console catalog in sidebar order.
func DefaultDestinations() []core.Destination {
	businessOnly := []core.AccountType{core.AccountTypeBusiness}

	return []core.Destination{
		{ID: DestinationDashboard, Label: "Dashboard", RequiredAccountTypes: allAccountTypes, MinimumRole: core.RoleSupport},
		{ID: DestinationPosts, Label: "Posts", RequiredAccountTypes: allAccountTypes, MinimumRole: core.RoleAdmin},
		{ID: DestinationProfile, Label: "Profile & Settings", RequiredAccountTypes: allAccountTypes, MinimumRole: core.RoleOwner},
		{ID: DestinationMenu, Label: "Menu Configuration", RequiredAccountTypes: businessOnly, RequiresVerification: true, MinimumRole: core.RoleAdmin},
		{ID: DestinationInbox, Label: "Inbox", RequiredAccountTypes: businessOnly, RequiresVerification: true, MinimumRole: core.RoleSupport},
		{ID: DestinationAnalytics, Label: "Analytics", RequiredAccountTypes: allAccountTypes, MinimumRole: core.RoleAdmin},
		{ID: DestinationMiniApps, Label: "Mini Apps", RequiredAccountTypes: businessOnly, RequiresVerification: true, MinimumRole: core.RoleAdmin},
	}
}

// Registry is the static catalog of destinations.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	destinations []core.Destination
	byID         map[string]int
}

// NewRegistry validates the destinations and keeps them in the given order.
func NewRegistry(destinations ...core.Destination) (*Registry, error) {
	r := &Registry{
		destinations: make([]core.Destination, 0, len(destinations)),
		byID:         make(map[string]int, len(destinations)),
	}

	for _, d := range destinations {
		if err := validateDestination(d); err != nil {
			return nil, err
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateDestination, d.ID)
		}

		r.byID[d.ID] = len(r.destinations)
		r.destinations = append(r.destinations, clone(d))
	}

	return r, nil
}

func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDestinations()...)
	if err != nil {
		panic(fmt.Sprintf("default destination catalog is invalid: %v", err))
	}
	return r
}

func validateDestination(d core.Destination) error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", core.ErrInvalidDestination)
	}
	if len(d.RequiredAccountTypes) == 0 {
		return fmt.Errorf("%w: %q has no account types", core.ErrInvalidDestination, d.ID)
	}
	for _, t := range d.RequiredAccountTypes {
		if _, err := core.ParseAccountType(string(t)); err != nil {
			return fmt.Errorf("%w: %q: %w", core.ErrInvalidDestination, d.ID, err)
		}
	}
	if _, err := core.RoleRank(d.MinimumRole); err != nil {
		return fmt.Errorf("%w: %q: %w", core.ErrInvalidDestination, d.ID, err)
	}
	return nil
}

// CheckDefault reports whether id can serve as the redirect target for
// denied navigation: it must exist and be allowed for the lowest role of
// every account type at any verification status.
func (r *Registry) CheckDefault(id string) error {
	d, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q is not in the catalog", core.ErrInvalidDefaultDestination, id)
	}
	if d.MinimumRole != core.RoleSupport {
		return fmt.Errorf("%w: %q requires role %s", core.ErrInvalidDefaultDestination, id, d.MinimumRole)
	}
	if d.RequiresVerification {
		return fmt.Errorf("%w: %q requires verification", core.ErrInvalidDefaultDestination, id)
	}
	for _, t := range allAccountTypes {
		if !d.Allows(t) {
			return fmt.Errorf("%w: %q is hidden from %s accounts", core.ErrInvalidDefaultDestination, id, t)
		}
	}
	return nil
}

// DestinationsFor returns the destinations applicable to an account type in
// catalog order. Role and verification are not considered here so callers
// can still render locked rows.
func (r *Registry) DestinationsFor(t core.AccountType) []core.Destination {
	out := make([]core.Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		if d.Allows(t) {
			out = append(out, clone(d))
		}
	}
	return out
}

func (r *Registry) Lookup(id string) (core.Destination, bool) {
	i, ok := r.byID[id]
	if !ok {
		return core.Destination{}, false
	}
	return clone(r.destinations[i]), true
}

// All returns every destination in catalog order.
func (r *Registry) All() []core.Destination {
	out := make([]core.Destination, len(r.destinations))
	for i, d := range r.destinations {
		out[i] = clone(d)
	}
	return out
}

// clone detaches the account type slice so callers cannot mutate the catalog
func clone(d core.Destination) core.Destination {
	d.RequiredAccountTypes = append([]core.AccountType(nil), d.RequiredAccountTypes...)
	return d
}
