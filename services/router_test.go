package services

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lborres/oagate/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, typ core.AccountType, status core.VerificationStatus, role core.Role) *core.Session {
	t.Helper()
	a := core.Account{ID: "acct-1", Name: "Test OA", Type: typ, VerificationStatus: status}
	m := core.Membership{ID: "m-1", AccountID: "acct-1", UserID: "user-1", Role: role}
	s, err := core.NewSession("sess-1", "user-1", a, m)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestRouterNavigate(t *testing.T) {
	tests := []struct {
		name        string
		accountType core.AccountType
		status      core.VerificationStatus
		role        core.Role
		destination string
		want        core.Outcome
	}{
		{
			name:        "creator owner cannot see business inbox",
			accountType: core.AccountTypeCreator,
			status:      core.VerificationUnverified,
			role:        core.RoleOwner,
			destination: DestinationInbox,
			want:        core.Deny(DestinationInbox, core.DenyHidden),
		},
		{
			name:        "creator owner opens posts",
			accountType: core.AccountTypeCreator,
			status:      core.VerificationUnverified,
			role:        core.RoleOwner,
			destination: DestinationPosts,
			want:        core.Allow(DestinationPosts),
		},
		{
			name:        "unverified business owner is locked out of inbox",
			accountType: core.AccountTypeBusiness,
			status:      core.VerificationUnverified,
			role:        core.RoleOwner,
			destination: DestinationInbox,
			want:        core.Deny(DestinationInbox, core.DenyLocked),
		},
		{
			name:        "verified business owner opens inbox",
			accountType: core.AccountTypeBusiness,
			status:      core.VerificationVerified,
			role:        core.RoleOwner,
			destination: DestinationInbox,
			want:        core.Allow(DestinationInbox),
		},
		{
			name:        "verified business support cannot see menu",
			accountType: core.AccountTypeBusiness,
			status:      core.VerificationVerified,
			role:        core.RoleSupport,
			destination: DestinationMenu,
			want:        core.Deny(DestinationMenu, core.DenyHidden),
		},
		{
			name:        "admin cannot see owner-only profile",
			accountType: core.AccountTypeBusiness,
			status:      core.VerificationVerified,
			role:        core.RoleAdmin,
			destination: DestinationProfile,
			want:        core.Deny(DestinationProfile, core.DenyHidden),
		},
		{
			name:        "support always reaches dashboard",
			accountType: core.AccountTypeCreator,
			status:      core.VerificationUnverified,
			role:        core.RoleSupport,
			destination: DestinationDashboard,
			want:        core.Allow(DestinationDashboard),
		},
		{
			name:        "unknown destination is not found",
			accountType: core.AccountTypeBusiness,
			status:      core.VerificationVerified,
			role:        core.RoleOwner,
			destination: "nonexistent-id",
			want:        core.Deny("nonexistent-id", core.DenyNotFound),
		},
	}

	router := NewRouter(NewDefaultRegistry(), quietLogger())

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			session := newTestSession(t, test.accountType, test.status, test.role)

			// Act
			got, err := router.Navigate(test.destination, session)

			// Assert
			if err != nil {
				t.Fatalf("Navigate() unexpected error: %v", err)
			}
			if got != test.want {
				t.Errorf("Navigate(%q) = %+v; want %+v", test.destination, got, test.want)
			}
		})
	}
}

// Requirement: an unknown id is NotFound for every kind of session.
func TestRouterNavigateNotFoundForAnySession(t *testing.T) {
	router := NewRouter(NewDefaultRegistry(), quietLogger())

	for _, typ := range []core.AccountType{core.AccountTypeCreator, core.AccountTypeBusiness} {
		for _, status := range []core.VerificationStatus{core.VerificationUnverified, core.VerificationPending, core.VerificationVerified} {
			for _, role := range []core.Role{core.RoleSupport, core.RoleAdmin, core.RoleOwner} {
				got, err := router.Navigate("nonexistent-id", newTestSession(t, typ, status, role))
				if err != nil {
					t.Fatalf("Navigate() unexpected error: %v", err)
				}
				if got.Allowed || got.Reason != core.DenyNotFound {
					t.Errorf("%s/%s/%s: got %+v; want not_found", typ, status, role, got)
				}
			}
		}
	}
}

// Requirement: a destination excluded by account type stays hidden whatever
// the role or verification status.
func TestRouterNavigateTypeExclusionAlwaysHidden(t *testing.T) {
	registry := NewDefaultRegistry()
	router := NewRouter(registry, quietLogger())

	for _, d := range registry.All() {
		if d.Allows(core.AccountTypeCreator) {
			continue
		}
		for _, status := range []core.VerificationStatus{core.VerificationUnverified, core.VerificationPending, core.VerificationVerified} {
			for _, role := range []core.Role{core.RoleSupport, core.RoleAdmin, core.RoleOwner} {
				got, err := router.Navigate(d.ID, newTestSession(t, core.AccountTypeCreator, status, role))
				if err != nil {
					t.Fatalf("Navigate() unexpected error: %v", err)
				}
				if got.Reason != core.DenyHidden {
					t.Errorf("%s for creator/%s/%s = %+v; want hidden", d.ID, status, role, got)
				}
			}
		}
	}
}

// Requirement: a verified account with a sufficient role is allowed into
// every destination applicable to its type.
func TestRouterNavigateVerifiedSufficientRoleAllowed(t *testing.T) {
	registry := NewDefaultRegistry()
	router := NewRouter(registry, quietLogger())

	for _, d := range registry.DestinationsFor(core.AccountTypeBusiness) {
		session := newTestSession(t, core.AccountTypeBusiness, core.VerificationVerified, d.MinimumRole)
		got, err := router.Navigate(d.ID, session)
		if err != nil {
			t.Fatalf("Navigate() unexpected error: %v", err)
		}
		if !got.Allowed {
			t.Errorf("%s with role %s = %+v; want allowed", d.ID, d.MinimumRole, got)
		}
	}
}

func TestRouterNavigateInvalidSession(t *testing.T) {
	router := NewRouter(NewDefaultRegistry(), quietLogger())

	t.Run("no session", func(t *testing.T) {
		_, err := router.Navigate(DestinationDashboard, nil)
		if !errors.Is(err, core.ErrNoActiveSession) {
			t.Errorf("Navigate() error = %v; want ErrNoActiveSession", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		session := newTestSession(t, core.AccountTypeBusiness, core.VerificationVerified, core.RoleOwner)
		session.Membership.Role = "superuser"

		_, err := router.Navigate(DestinationDashboard, session)
		if !errors.Is(err, core.ErrInvalidRole) {
			t.Errorf("Navigate() error = %v; want ErrInvalidRole", err)
		}
	})

	t.Run("mismatched account", func(t *testing.T) {
		session := newTestSession(t, core.AccountTypeBusiness, core.VerificationVerified, core.RoleOwner)
		session.Membership.AccountID = "acct-2"

		_, err := router.Navigate(DestinationDashboard, session)
		if !errors.Is(err, core.ErrMalformedSession) {
			t.Errorf("Navigate() error = %v; want ErrMalformedSession", err)
		}
	})
}

func TestRouterMenu(t *testing.T) {
	tests := []struct {
		name    string
		typ     core.AccountType
		status  core.VerificationStatus
		role    core.Role
		want    map[string]core.Visibility
		wantIDs []string
	}{
		{
			name:   "unverified business admin sees locked business tools",
			typ:    core.AccountTypeBusiness,
			status: core.VerificationUnverified,
			role:   core.RoleAdmin,
			wantIDs: []string{
				DestinationDashboard,
				DestinationPosts,
				DestinationMenu,
				DestinationInbox,
				DestinationAnalytics,
				DestinationMiniApps,
			},
			want: map[string]core.Visibility{
				DestinationMenu:     core.VisibilityLocked,
				DestinationInbox:    core.VisibilityLocked,
				DestinationMiniApps: core.VisibilityLocked,
				DestinationPosts:    core.VisibilityAllowed,
			},
		},
		{
			name:    "verified business support sees dashboard and inbox",
			typ:     core.AccountTypeBusiness,
			status:  core.VerificationVerified,
			role:    core.RoleSupport,
			wantIDs: []string{DestinationDashboard, DestinationInbox},
			want: map[string]core.Visibility{
				DestinationInbox: core.VisibilityAllowed,
			},
		},
		{
			name:    "creator owner never sees business rows",
			typ:     core.AccountTypeCreator,
			status:  core.VerificationVerified,
			role:    core.RoleOwner,
			wantIDs: []string{DestinationDashboard, DestinationPosts, DestinationProfile, DestinationAnalytics},
		},
	}

	router := NewRouter(NewDefaultRegistry(), quietLogger())

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			items, err := router.Menu(newTestSession(t, test.typ, test.status, test.role))
			if err != nil {
				t.Fatalf("Menu() error = %v", err)
			}

			if len(items) != len(test.wantIDs) {
				t.Fatalf("Menu() returned %d items; want %d", len(items), len(test.wantIDs))
			}
			for i, id := range test.wantIDs {
				if items[i].Destination.ID != id {
					t.Errorf("Menu()[%d] = %q; want %q", i, items[i].Destination.ID, id)
				}
				if want, ok := test.want[id]; ok && items[i].Visibility != want {
					t.Errorf("%s visibility = %s; want %s", id, items[i].Visibility, want)
				}
			}
		})
	}
}

func TestRouterCapabilities(t *testing.T) {
	router := NewRouter(NewDefaultRegistry(), quietLogger())

	caps, err := router.Capabilities(newTestSession(t, core.AccountTypeBusiness, core.VerificationPending, core.RoleOwner))
	if err != nil {
		t.Fatalf("Capabilities() error = %v", err)
	}

	want := []string{DestinationDashboard, DestinationPosts, DestinationProfile, DestinationAnalytics}
	if len(caps) != len(want) {
		t.Fatalf("Capabilities() = %v; want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("Capabilities()[%d] = %q; want %q", i, caps[i], want[i])
		}
	}

	if router.DefaultDestination() != DestinationDashboard {
		t.Errorf("DefaultDestination() = %q; want dashboard", router.DefaultDestination())
	}
}

// Requirement: the redirect target for denied navigation exists and is open
// to every session, whatever the catalog.
func TestNewRouterWithDefault(t *testing.T) {
	home := core.Destination{ID: "home", Label: "Home", RequiredAccountTypes: allAccountTypes, MinimumRole: core.RoleSupport}

	tests := []struct {
		name      string
		catalog   []core.Destination
		defaultID string
		wantErr   error
	}{
		{name: "dashboard in the default catalog", catalog: DefaultDestinations(), defaultID: DestinationDashboard},
		{name: "custom catalog with its own landing page", catalog: []core.Destination{home}, defaultID: "home"},
		{name: "custom catalog without dashboard", catalog: []core.Destination{home}, defaultID: DestinationDashboard, wantErr: core.ErrInvalidDefaultDestination},
		{name: "admin-only destination", catalog: DefaultDestinations(), defaultID: DestinationPosts, wantErr: core.ErrInvalidDefaultDestination},
		{name: "verification-gated destination", catalog: DefaultDestinations(), defaultID: DestinationInbox, wantErr: core.ErrInvalidDefaultDestination},
		{
			name: "destination hidden from creators",
			catalog: []core.Destination{
				{ID: "shopfront", RequiredAccountTypes: []core.AccountType{core.AccountTypeBusiness}, MinimumRole: core.RoleSupport},
			},
			defaultID: "shopfront",
			wantErr:   core.ErrInvalidDefaultDestination,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			registry, err := NewRegistry(test.catalog...)
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}

			// Act
			router, err := NewRouterWithDefault(registry, quietLogger(), test.defaultID)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewRouterWithDefault() error = %v; want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if got := router.DefaultDestination(); got != test.defaultID {
				t.Errorf("DefaultDestination() = %q; want %q", got, test.defaultID)
			}
			if _, ok := registry.Lookup(router.DefaultDestination()); !ok {
				t.Error("redirect target should exist in the catalog")
			}
		})
	}
}
