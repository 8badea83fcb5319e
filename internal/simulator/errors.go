package simulator

import "errors"

// Sentinel kinds for simulator errors.
var (
	ErrConfig    = errors.New("invalid simulator config")
	ErrUnhealthy = errors.New("service unhealthy")
	ErrEnvelope  = errors.New("unexpected response envelope")
	// ErrDelivery marks a run where the service delivered more commands than
	// were sent, or directions nobody sent.
	ErrDelivery = errors.New("delivery check failed")
)
