package core

import (
	"errors"
	"fmt"
)

// Role model errors
var (
	ErrInvalidRole        = errors.New("invalid role")         // programming/data error
	ErrInvalidAccountType = errors.New("invalid account type") // 400
)

// InvalidRoleError carries the unrecognized role value.
// It matches ErrInvalidRole with errors.Is.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role %q", e.Role)
}

func (e *InvalidRoleError) Is(target error) bool {
	return target == ErrInvalidRole
}

// Account & membership errors
var (
	ErrAccountNotFound      = errors.New("account not found")                      // 404
	ErrMembershipNotFound   = errors.New("membership not found")                   // 404
	ErrMembershipExists     = errors.New("membership already exists")              // 409
	ErrOwnerCannotLeave     = errors.New("account owner cannot leave the account") // 409
	ErrOwnerAlreadyAssigned = errors.New("account already has an owner")           // 409
	ErrForbidden            = errors.New("role does not permit this action")       // 403
	ErrInvalidTransition    = errors.New("invalid verification status transition") // 409
	ErrAccountNameRequired  = errors.New("account name is required")               // 400
	ErrUserRequired         = errors.New("user id is required")                    // 400
)

// Session errors
var (
	ErrNoActiveSession   = errors.New("no active session")            // 409
	ErrMalformedSession  = errors.New("malformed session")            // 500
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid client token")         // 401
	ErrSessionExpired    = errors.New("client session expired")       // 401
	ErrCacheNotFound     = errors.New("membership not found in cache")
)

// Registry errors
var (
	ErrDuplicateDestination = errors.New("duplicate destination id")
	ErrInvalidDestination   = errors.New("invalid destination")

	// ErrInvalidDefaultDestination: the redirect target for denied
	// navigation must be open to every session
	ErrInvalidDefaultDestination = errors.New("invalid default destination")
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired = errors.New("storage adapter is required") // 500
)
