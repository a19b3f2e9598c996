package payments

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// checksumPayPath is both the signed string and the invoked path; PhonePe
// rejects the X-VERIFY header when they differ.
const checksumPayPath = "/pg/v1/pay"

// ChecksumAdapter speaks the legacy PG v1 API: base64 payload signed with a
// salted SHA-256 in the X-VERIFY header.
type ChecksumAdapter struct {
	MerchantID   string
	SaltKey      string
	SaltIndex    string
	IsProduction bool
	// BaseURL overrides the environment-selected host.
	BaseURL string
}

func NewChecksumAdapter(merchantID, saltKey, saltIndex string, env Environment) *ChecksumAdapter {
	if saltIndex == "" {
		saltIndex = "1"
	}
	return &ChecksumAdapter{
		MerchantID:   merchantID,
		SaltKey:      saltKey,
		SaltIndex:    saltIndex,
		IsProduction: env.IsProduction(),
	}
}

func (c *ChecksumAdapter) Name() string         { return ModeChecksum }
func (c *ChecksumAdapter) OrderPrefix() string  { return "MT" }
func (c *ChecksumAdapter) OrderIDField() string { return "merchantTransactionId" }

func (c *ChecksumAdapter) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.IsProduction {
		return "https://api.phonepe.com/apis/hermes"
	}
	return "https://api-preprod.phonepe.com/apis/pg-sandbox"
}

func (c *ChecksumAdapter) PayURL() string {
	return c.baseURL() + checksumPayPath
}

type checksumPayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

func (c *ChecksumAdapter) Payload(order Order) any {
	return checksumPayload{
		MerchantID:            c.MerchantID,
		MerchantTransactionID: order.ID,
		MerchantUserID:        uuid.NewString(),
		Amount:                order.Request.AmountPaise,
		RedirectURL:           order.RedirectURL,
		RedirectMode:          "REDIRECT",
		// Server-to-server callbacks are not consumed; PhonePe still
		// requires the field.
		CallbackURL:       order.RedirectURL,
		MobileNumber:      order.Request.Phone,
		PaymentInstrument: paymentInstrument{Type: "PAY_PAGE"},
	}
}

// Checksum computes the X-VERIFY value for a base64 encoded request.
func (c *ChecksumAdapter) Checksum(request string) string {
	sum := sha256.Sum256([]byte(request + checksumPayPath + c.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + c.SaltIndex
}

func (c *ChecksumAdapter) Authenticate(ctx context.Context, payload []byte) (*SignedRequest, error) {
	request := base64.StdEncoding.EncodeToString(payload)

	body, err := json.Marshal(map[string]string{"request": request})
	if err != nil {
		return nil, fmt.Errorf("checksum wrap payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	header.Set("X-VERIFY", c.Checksum(request))

	return &SignedRequest{Body: body, Header: header}, nil
}

func (c *ChecksumAdapter) RedirectURL(reply json.RawMessage) string {
	var res struct {
		Data struct {
			InstrumentResponse struct {
				RedirectInfo struct {
					URL string `json:"url"`
				} `json:"redirectInfo"`
			} `json:"instrumentResponse"`
		} `json:"data"`
	}
	if err := json.Unmarshal(reply, &res); err != nil {
		return ""
	}
	return res.Data.InstrumentResponse.RedirectInfo.URL
}
