package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSalt = "099eb0cd-02cf-4e2a-8aca-3e6c6aff0399"

func TestChecksumAdapter_Checksum(t *testing.T) {
	c := NewChecksumAdapter("PGTESTPAYUAT", testSalt, "", EnvTest)

	got := c.Checksum("eyJ0ZXN0IjoxfQ==")

	assert.Equal(t, "dcd9c415225ede2535a7c3814a694554517d33c43e7c00049b87067c80ff9872###1", got)
}

func TestChecksumAdapter_Authenticate(t *testing.T) {
	c := NewChecksumAdapter("PGTESTPAYUAT", testSalt, "2", EnvTest)

	signed, err := c.Authenticate(context.Background(), []byte(`{"test":1}`))
	require.NoError(t, err)

	var wire struct {
		Request string `json:"request"`
	}
	require.NoError(t, json.Unmarshal(signed.Body, &wire))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(`{"test":1}`)), wire.Request)
	assert.Equal(t, "dcd9c415225ede2535a7c3814a694554517d33c43e7c00049b87067c80ff9872###2", signed.Header.Get("X-VERIFY"))
	assert.Equal(t, "application/json", signed.Header.Get("Content-Type"))
}

func TestChecksumAdapter_Payload(t *testing.T) {
	c := NewChecksumAdapter("PGTESTPAYUAT", testSalt, "1", EnvProd)

	payload := c.Payload(Order{
		ID:          "MT_1700000000000",
		RedirectURL: "https://joyrentals.store/phonepe-redirect.html",
		Request:     PaymentRequest{AmountPaise: 19950, Phone: "9999999999"},
	}).(checksumPayload)

	assert.Equal(t, "PGTESTPAYUAT", payload.MerchantID)
	assert.Equal(t, "MT_1700000000000", payload.MerchantTransactionID)
	assert.NotEmpty(t, payload.MerchantUserID)
	assert.Equal(t, int64(19950), payload.Amount)
	assert.Equal(t, "https://joyrentals.store/phonepe-redirect.html", payload.RedirectURL)
	assert.Equal(t, "REDIRECT", payload.RedirectMode)
	assert.Equal(t, "9999999999", payload.MobileNumber)
	assert.Equal(t, "PAY_PAGE", payload.PaymentInstrument.Type)
	assert.Equal(t, "https://api.phonepe.com/apis/hermes/pg/v1/pay", c.PayURL())
}

func TestChecksumAdapter_RedirectURL(t *testing.T) {
	c := NewChecksumAdapter("M", "s", "1", EnvTest)

	reply := `{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"type":"PAY_PAGE","redirectInfo":{"url":"https://mercury-uat.phonepe.com/transact/abc","method":"GET"}}}}`
	assert.Equal(t, "https://mercury-uat.phonepe.com/transact/abc", c.RedirectURL(json.RawMessage(reply)))

	assert.Empty(t, c.RedirectURL(json.RawMessage(`{"redirectUrl":"https://elsewhere"}`)))
	assert.Empty(t, c.RedirectURL(json.RawMessage(`[]`)))
}
