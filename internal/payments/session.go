package payments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// SessionRequester invokes the gateway's create-payment endpoint. It sends
// exactly one request and never retries.
type SessionRequester struct {
	httpClient *http.Client
}

func NewSessionRequester(client *http.Client) *SessionRequester {
	if client == nil {
		client = http.DefaultClient
	}
	return &SessionRequester{httpClient: client}
}

// Send posts the signed request and returns the status and raw reply body.
func (s *SessionRequester) Send(ctx context.Context, url string, signed *SignedRequest) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(signed.Body))
	if err != nil {
		return 0, nil, &GatewayError{Err: fmt.Errorf("build pay request: %w", err)}
	}
	for k, v := range signed.Header {
		httpReq.Header[k] = v
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, &GatewayError{Err: fmt.Errorf("pay request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayBody))
	if err != nil {
		return resp.StatusCode, nil, &GatewayError{Status: resp.StatusCode, Err: fmt.Errorf("read pay response: %w", err)}
	}
	return resp.StatusCode, raw, nil
}
