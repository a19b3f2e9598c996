package payments

import (
	"context"
	"encoding/json"
)

// Protocol is one PhonePe checkout API generation. Both generations share the
// same initiation pipeline and differ only in how a request is authenticated,
// what the payload looks like and where the redirect URL sits in the reply.
type Protocol interface {
	// Name is the auth mode, "checksum" or "token".
	Name() string
	// OrderPrefix prefixes generated order identifiers.
	OrderPrefix() string
	// OrderIDField is the JSON key the order identifier is reported under.
	OrderIDField() string
	// PayURL is the create-payment endpoint for the configured environment.
	PayURL() string
	// Payload builds the gateway-specific create-payment body.
	Payload(order Order) any
	// Authenticate turns a payload into the signed request to send.
	Authenticate(ctx context.Context, payload []byte) (*SignedRequest, error)
	// RedirectURL extracts the hosted checkout URL from a decoded reply.
	RedirectURL(reply json.RawMessage) string
}

const (
	ModeChecksum = "checksum"
	ModeToken    = "token"
)

// Environment selects sandbox or production hosts.
type Environment string

const (
	EnvTest Environment = "TEST"
	EnvProd Environment = "PROD"
)

func (e Environment) IsProduction() bool { return e == EnvProd }
