package services

import (
	"fmt"

	"github.com/lborres/oagate/core"
)

// Operation ids bound by HTTP adapters
const (
	OpLogin               = "login"
	OpLogout              = "logout"
	OpGetSession          = "getSession"
	OpListAccounts        = "listAccounts"
	OpCreateAccount       = "createAccount"
	OpSwitchAccount       = "switchAccount"
	OpLeaveAccount        = "leaveAccount"
	OpAddMember           = "addMember"
	OpAdvanceVerification = "advanceVerification"
	OpCapabilities        = "getCapabilities"
	OpNavigate            = "navigate"
)

// BaseEndpoints returns framework-agnostic route definitions
// for all console gating endpoints, in registration order.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/login",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpLogin,
				Description: "Open a console session for a user authenticated upstream",
			},
		},
		{
			Path:      "/logout",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpLogout,
				Description: "End the current console session",
			},
		},
		{
			Path:      "/session",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetSession,
				Description: "Get the active account and membership",
			},
		},
		{
			Path:      "/accounts",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpListAccounts,
				Description: "List the accounts the user is a member of",
			},
		},
		{
			Path:      "/accounts",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpCreateAccount,
				Description: "Create an official account owned by the user",
			},
		},
		{
			Path:      "/accounts/:id/switch",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpSwitchAccount,
				Description: "Switch the active account",
			},
		},
		{
			Path:      "/accounts/:id/leave",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpLeaveAccount,
				Description: "Leave an account the user does not own",
			},
		},
		{
			Path:      "/accounts/:id/members",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpAddMember,
				Description: "Add a staff member to an account",
			},
		},
		{
			Path:      "/accounts/:id/verification",
			Method:    "POST",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpAdvanceVerification,
				Description: "Advance the account verification status",
			},
		},
		{
			Path:      "/capabilities",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpCapabilities,
				Description: "List navigation destinations and their gate results",
			},
		},
		{
			Path:      "/navigate/:destination",
			Method:    "GET",
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpNavigate,
				Description: "Resolve a navigation request against the active session",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
	order     []string
}

// NewEndpointRegistry creates a new registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	for _, ep := range BaseEndpoints() {
		ep := ep
		// base endpoints are unique by construction
		_ = reg.register(&ep)
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// register adds a single endpoint to the registry with conflict detection.
func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	key := endpointKey(ep)

	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}

	r.endpoints[key] = ep
	r.order = append(r.order, key)
	return nil
}

// RegisterPlugin registers additional endpoints to the registry.
// Returns error if any endpoint conflicts with existing endpoints
// or with other endpoints in the same batch.
//
// If an error occurs, no endpoints from the batch are registered.
func (r *EndpointRegistry) RegisterPlugin(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpointKey(&endpoints[i])

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("plugin endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("plugin contains duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		_ = r.register(&ep)
	}

	return nil
}

// Endpoints returns all registered endpoints in registration order.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.endpoints[key])
	}
	return result
}
