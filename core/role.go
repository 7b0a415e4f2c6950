package core

type Role string

const (
	RoleSupport Role = "support"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

// ParseRole converts raw input (request bodies, database rows) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, err := RoleRank(r); err != nil {
		return "", err
	}
	return r, nil
}

// RoleRank orders roles: support < admin < owner.
func RoleRank(r Role) (int, error) {
	switch r {
	case RoleSupport:
		return 0, nil
	case RoleAdmin:
		return 1, nil
	case RoleOwner:
		return 2, nil
	}
	return 0, &InvalidRoleError{Role: string(r)}
}

// RoleSatisfies reports whether actual is at least as privileged as required.
func RoleSatisfies(actual, required Role) (bool, error) {
	have, err := RoleRank(actual)
	if err != nil {
		return false, err
	}
	need, err := RoleRank(required)
	if err != nil {
		return false, err
	}
	return have >= need, nil
}
