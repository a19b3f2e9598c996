package payments

import "encoding/json"

// Normalize maps a create-payment reply to a SessionResult. A reply without a
// redirect URL is a failure even when the HTTP status is 2xx.
func Normalize(p Protocol, status int, body []byte, orderID string) (*SessionResult, error) {
	raw := rawJSON(body)

	var redirect string
	if json.Valid(body) {
		redirect = p.RedirectURL(body)
	}

	if status < 200 || status > 299 || redirect == "" {
		return nil, &GatewayError{Status: status, Raw: raw, Err: ErrNoRedirectURL}
	}

	return &SessionResult{
		RedirectURL:  redirect,
		OrderID:      orderID,
		OrderIDField: p.OrderIDField(),
		Raw:          raw,
	}, nil
}
