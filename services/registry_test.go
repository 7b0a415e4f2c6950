package services

import (
	"errors"
	"testing"

	"github.com/lborres/oagate/core"
)

func TestNewDefaultRegistry(t *testing.T) {
	// Arrange & Act
	r := NewDefaultRegistry()

	// Assert
	want := []string{
		DestinationDashboard,
		DestinationPosts,
		DestinationProfile,
		DestinationMenu,
		DestinationInbox,
		DestinationAnalytics,
		DestinationMiniApps,
	}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("default registry should have %d destinations; got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("destination %d = %q; want %q", i, all[i].ID, id)
		}
	}
}

// Requirement: DestinationsFor filters by account type only and keeps
// catalog order.
func TestRegistryDestinationsFor(t *testing.T) {
	tests := []struct {
		name        string
		accountType core.AccountType
		want        []string
	}{
		{
			name:        "creator gets shared destinations only",
			accountType: core.AccountTypeCreator,
			want:        []string{DestinationDashboard, DestinationPosts, DestinationProfile, DestinationAnalytics},
		},
		{
			name:        "business gets every destination",
			accountType: core.AccountTypeBusiness,
			want: []string{
				DestinationDashboard,
				DestinationPosts,
				DestinationProfile,
				DestinationMenu,
				DestinationInbox,
				DestinationAnalytics,
				DestinationMiniApps,
			},
		},
		{
			name:        "unknown type gets nothing",
			accountType: "enterprise",
			want:        []string{},
		},
	}

	r := NewDefaultRegistry()
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := r.DestinationsFor(test.accountType)
			if len(got) != len(test.want) {
				t.Fatalf("DestinationsFor(%s) returned %d destinations; want %d", test.accountType, len(got), len(test.want))
			}
			for i := range test.want {
				if got[i].ID != test.want[i] {
					t.Errorf("DestinationsFor(%s)[%d] = %q; want %q", test.accountType, i, got[i].ID, test.want[i])
				}
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry()

	d, ok := r.Lookup(DestinationInbox)
	if !ok {
		t.Fatal("Lookup(inbox) should succeed")
	}
	if !d.RequiresVerification || d.MinimumRole != core.RoleSupport {
		t.Errorf("inbox = %+v; want verification required with support role", d)
	}

	if _, ok := r.Lookup("settings"); ok {
		t.Error("Lookup of an unknown id should fail")
	}
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewDefaultRegistry()

	all := r.All()
	all[0].ID = "tampered"
	all[0].RequiredAccountTypes[0] = "tampered"

	d, ok := r.Lookup(DestinationDashboard)
	if !ok {
		t.Fatal("mutating All() result must not affect the registry")
	}
	if !d.Allows(core.AccountTypeCreator) {
		t.Error("mutating All() result must not change account types in the registry")
	}
}

func TestNewRegistryValidation(t *testing.T) {
	both := []core.AccountType{core.AccountTypeCreator, core.AccountTypeBusiness}

	tests := []struct {
		name         string
		destinations []core.Destination
		wantErr      error
	}{
		{
			name: "valid",
			destinations: []core.Destination{
				{ID: "a", RequiredAccountTypes: both, MinimumRole: core.RoleSupport},
			},
		},
		{
			name: "duplicate id",
			destinations: []core.Destination{
				{ID: "a", RequiredAccountTypes: both, MinimumRole: core.RoleSupport},
				{ID: "a", RequiredAccountTypes: both, MinimumRole: core.RoleAdmin},
			},
			wantErr: core.ErrDuplicateDestination,
		},
		{
			name:         "missing id",
			destinations: []core.Destination{{RequiredAccountTypes: both, MinimumRole: core.RoleSupport}},
			wantErr:      core.ErrInvalidDestination,
		},
		{
			name:         "no account types",
			destinations: []core.Destination{{ID: "a", MinimumRole: core.RoleSupport}},
			wantErr:      core.ErrInvalidDestination,
		},
		{
			name:         "unknown account type",
			destinations: []core.Destination{{ID: "a", RequiredAccountTypes: []core.AccountType{"enterprise"}, MinimumRole: core.RoleSupport}},
			wantErr:      core.ErrInvalidAccountType,
		},
		{
			name:         "unknown minimum role",
			destinations: []core.Destination{{ID: "a", RequiredAccountTypes: both, MinimumRole: "root"}},
			wantErr:      core.ErrInvalidRole,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			r, err := NewRegistry(test.destinations...)

			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewRegistry() error = %v; want %v", err, test.wantErr)
			}
			if test.wantErr == nil && r == nil {
				t.Fatal("NewRegistry() returned nil registry")
			}
		})
	}
}
