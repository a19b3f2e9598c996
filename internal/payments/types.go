package payments

import (
	"encoding/json"
	"net/http"
)

// PaymentRequest is the validated customer input for one checkout.
type PaymentRequest struct {
	AmountPaise int64  `validate:"gt=0"`
	Name        string `validate:"max=256"`
	Phone       string `validate:"max=256"`
	Email       string `validate:"max=256"`
	City        string `validate:"max=256"`
	Pincode     string `validate:"max=256"`
}

// Order is what a Protocol needs to build the create-payment payload.
type Order struct {
	ID          string
	RedirectURL string
	Request     PaymentRequest
}

// SignedRequest is the create-payment call after authentication:
// the wire body and the headers the gateway expects.
type SignedRequest struct {
	Body   []byte
	Header http.Header
}

// SessionResult is the normalized outcome of a successful initiation.
type SessionResult struct {
	RedirectURL string
	OrderID     string
	// OrderIDField is the response key the frontend expects for OrderID
	// (merchantOrderId or merchantTransactionId).
	OrderIDField string
	Raw          json.RawMessage
}
