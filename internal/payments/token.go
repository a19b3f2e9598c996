package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxGatewayBody caps how much of a gateway reply is read into memory.
const maxGatewayBody = 1 << 20

var ErrNoAccessToken = errors.New("no access token in auth response")

// TokenAdapter speaks the Standard Checkout v2 API: an OAuth
// client-credentials exchange followed by an O-Bearer create-payment call.
type TokenAdapter struct {
	ClientID      string
	ClientVersion string
	ClientSecret  string
	IsProduction  bool
	// AuthURL and PayBaseURL override the environment-selected hosts.
	AuthURL    string
	PayBaseURL string

	httpClient *http.Client
	cache      *TokenCache
}

func NewTokenAdapter(clientID, clientVersion, clientSecret string, env Environment, client *http.Client) *TokenAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenAdapter{
		ClientID:      clientID,
		ClientVersion: clientVersion,
		ClientSecret:  clientSecret,
		IsProduction:  env.IsProduction(),
		httpClient:    client,
	}
}

// WithCache makes the adapter reuse unexpired tokens from c.
func (t *TokenAdapter) WithCache(c *TokenCache) *TokenAdapter {
	t.cache = c
	return t
}

func (t *TokenAdapter) Name() string         { return ModeToken }
func (t *TokenAdapter) OrderPrefix() string  { return "ORD" }
func (t *TokenAdapter) OrderIDField() string { return "merchantOrderId" }

func (t *TokenAdapter) authURL() string {
	if t.AuthURL != "" {
		return t.AuthURL
	}
	if t.IsProduction {
		return "https://api.phonepe.com/apis/identity-manager/v1/oauth/token"
	}
	return "https://api-preprod.phonepe.com/apis/pg-sandbox/v1/oauth/token"
}

func (t *TokenAdapter) PayURL() string {
	base := t.PayBaseURL
	if base == "" {
		base = "https://api-preprod.phonepe.com/apis/pg-sandbox"
		if t.IsProduction {
			base = "https://api.phonepe.com/apis/pg"
		}
	}
	return base + "/checkout/v2/pay"
}

func (t *TokenAdapter) cacheKey() string {
	return fmt.Sprintf("%t|%s|%s", t.IsProduction, t.ClientID, t.ClientVersion)
}

type tokenPayload struct {
	MerchantOrderID string      `json:"merchantOrderId"`
	Amount          int64       `json:"amount"`
	MetaInfo        metaInfo    `json:"metaInfo"`
	PaymentFlow     paymentFlow `json:"paymentFlow"`
}

type metaInfo struct {
	UDF1 string `json:"udf1"`
	UDF2 string `json:"udf2"`
	UDF3 string `json:"udf3"`
	UDF4 string `json:"udf4"`
	UDF5 string `json:"udf5"`
}

type paymentFlow struct {
	Type         string       `json:"type"`
	Message      string       `json:"message"`
	MerchantURLs merchantURLs `json:"merchantUrls"`
}

type merchantURLs struct {
	RedirectURL string `json:"redirectUrl"`
}

func (t *TokenAdapter) Payload(order Order) any {
	req := order.Request
	name := req.Name
	if name == "" {
		name = "customer"
	}
	return tokenPayload{
		MerchantOrderID: order.ID,
		Amount:          req.AmountPaise,
		MetaInfo: metaInfo{
			UDF1: req.Phone,
			UDF2: req.Email,
			UDF3: req.City,
			UDF4: req.Pincode,
			UDF5: req.Name,
		},
		PaymentFlow: paymentFlow{
			Type:         "PG_CHECKOUT",
			Message:      "Payment for " + name,
			MerchantURLs: merchantURLs{RedirectURL: order.RedirectURL},
		},
	}
}

func (t *TokenAdapter) Authenticate(ctx context.Context, payload []byte) (*SignedRequest, error) {
	token, err := t.FetchToken(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "O-Bearer "+token)

	return &SignedRequest{Body: payload, Header: header}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// FetchToken performs the client-credentials exchange, or returns a cached
// token when caching is enabled and one is still valid.
func (t *TokenAdapter) FetchToken(ctx context.Context) (string, error) {
	if t.cache != nil {
		if token, ok := t.cache.Get(t.cacheKey()); ok {
			return token, nil
		}
	}

	form := url.Values{}
	form.Set("client_id", t.ClientID)
	form.Set("client_version", t.ClientVersion)
	form.Set("client_secret", t.ClientSecret)
	form.Set("grant_type", "client_credentials")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.authURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("build token request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("token request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayBody))
	if err != nil {
		return "", &AuthError{Status: resp.StatusCode, Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode, Raw: rawJSON(raw), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var res tokenResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Raw: rawJSON(raw), Err: fmt.Errorf("decode token response: %w", err)}
	}
	if res.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Raw: rawJSON(raw), Err: ErrNoAccessToken}
	}

	if t.cache != nil && res.ExpiresAt > 0 {
		t.cache.Put(t.cacheKey(), res.AccessToken, time.Unix(res.ExpiresAt, 0))
	}
	return res.AccessToken, nil
}

func (t *TokenAdapter) RedirectURL(reply json.RawMessage) string {
	var res struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(reply, &res); err != nil {
		return ""
	}
	return res.RedirectURL
}
