package core

type DenyReason string

const (
	// Destination id is not in the registry at all
	DenyNotFound DenyReason = "not_found"
	// Destination exists but not for this account type or role
	DenyHidden DenyReason = "hidden"
	// Destination is visible but needs a verified account
	DenyLocked DenyReason = "locked"
)

// Outcome is the result of a navigation request. Denials are values, not errors.
type Outcome struct {
	DestinationID string     `json:"destinationId"`
	Allowed       bool       `json:"allowed"`
	Reason        DenyReason `json:"reason,omitempty"`
}

func Allow(destinationID string) Outcome {
	return Outcome{DestinationID: destinationID, Allowed: true}
}

func Deny(destinationID string, reason DenyReason) Outcome {
	return Outcome{DestinationID: destinationID, Reason: reason}
}

// MenuItem is a non-hidden destination as rendered in a navigation surface
type MenuItem struct {
	Destination Destination `json:"destination"`
	Visibility  Visibility  `json:"visibility"`
}
