package core

// Endpoint is a framework-agnostic route definition.
// HTTP adapters bind a handler to each endpoint by OperationID.
type Endpoint struct {
	Path      string
	Method    string
	Protected bool // requires a client token
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
