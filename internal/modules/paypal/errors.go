package paypal

import "fmt"

// Stages identify which processor operation a GatewayError came from.
const (
	StageCreate  = "create"
	StageCapture = "capture"
	StagePayout  = "payout"
)

// Causes distinguish a rejected HTTP response from a transport failure.
const (
	CauseHTTP    = "http"
	CauseNetwork = "network"
)

// ValidationError means a request was rejected before anything left the
// process.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthError means the client-credentials exchange failed, either because
// credentials are missing or because the token endpoint rejected them.
// Body carries the processor's raw error body for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return "paypal auth: " + e.Body
	}
	return fmt.Sprintf("paypal auth: HTTP %d: %s", e.Status, e.Body)
}

// GatewayError means a processor call failed. The local order row is always
// left in its last-known-good state when one of these surfaces.
type GatewayError struct {
	Stage  string // create | capture | payout
	Cause  string // http | network
	Status int    // HTTP status code, 0 for transport failures
	Body   string
}

func (e *GatewayError) Error() string {
	if e.Cause == CauseNetwork {
		return fmt.Sprintf("paypal %s: network: %s", e.Stage, e.Body)
	}
	return fmt.Sprintf("paypal %s: HTTP %d: %s", e.Stage, e.Status, e.Body)
}
