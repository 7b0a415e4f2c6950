package core

type Visibility string

const (
	VisibilityHidden  Visibility = "hidden"
	VisibilityLocked  Visibility = "locked"
	VisibilityAllowed Visibility = "allowed"
)

// Evaluate decides whether d is hidden, locked, or allowed for the account
// and membership.
//
// Type and role checks run before the verification check: a destination a
// role cannot see must never show up as locked.
func Evaluate(d Destination, a Account, m Membership) (Visibility, error) {
	if !d.Allows(a.Type) {
		return VisibilityHidden, nil
	}

	ok, err := RoleSatisfies(m.Role, d.MinimumRole)
	if err != nil {
		return VisibilityHidden, err
	}
	if !ok {
		return VisibilityHidden, nil
	}

	if d.RequiresVerification && a.VerificationStatus != VerificationVerified {
		return VisibilityLocked, nil
	}

	return VisibilityAllowed, nil
}
