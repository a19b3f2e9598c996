package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingAmount = errors.New("amount required")

// ValidationError is a client fault in the incoming payment request.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigurationError means operator-provided credentials are missing or
// unusable. It is never retried.
type ConfigurationError struct {
	Kind    string
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("PhonePe %s credentials not set (%s)", e.Kind, strings.Join(e.Missing, " / "))
	}
	return fmt.Sprintf("PhonePe configuration invalid: %s", e.Reason)
}

// AuthError means the gateway rejected the OAuth client-credentials exchange.
type AuthError struct {
	Status int
	Raw    json.RawMessage
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("phonepe auth failed: http=%d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("phonepe auth failed: http=%d body=%s", e.Status, string(e.Raw))
}

func (e *AuthError) Unwrap() error { return e.Err }

// GatewayError means the create-payment call failed or returned no redirect URL.
type GatewayError struct {
	Status int
	Raw    json.RawMessage
	Err    error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("phonepe pay failed: http=%d: %v", e.Status, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

var ErrNoRedirectURL = errors.New("no redirect URL")

// rawJSON keeps a gateway body printable in a JSON response even when the
// gateway did not send JSON.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}
