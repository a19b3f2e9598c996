package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		assert.Equal(t, "1", r.PostForm.Get("client_version"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestTokenAdapter(authURL string) *TokenAdapter {
	a := NewTokenAdapter("client", "1", "secret", EnvTest, nil)
	a.AuthURL = authURL
	return a
}

func TestTokenAdapter_Authenticate(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"tok-123","token_type":"O-Bearer","expires_at":1893456000}`, nil)
	a := newTestTokenAdapter(srv.URL)

	signed, err := a.Authenticate(context.Background(), []byte(`{"amount":100}`))
	require.NoError(t, err)

	assert.Equal(t, "O-Bearer tok-123", signed.Header.Get("Authorization"))
	assert.Equal(t, "application/json", signed.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"amount":100}`, string(signed.Body))
}

func TestTokenAdapter_NoAccessToken(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"token_type":"O-Bearer"}`, nil)
	a := newTestTokenAdapter(srv.URL)

	_, err := a.Authenticate(context.Background(), []byte(`{}`))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, ErrNoAccessToken)
	assert.JSONEq(t, `{"token_type":"O-Bearer"}`, string(authErr.Raw))
}

func TestTokenAdapter_Rejected(t *testing.T) {
	srv := newTokenServer(t, http.StatusUnauthorized, `{"code":"INVALID_CLIENT","message":"bad secret"}`, nil)
	a := newTestTokenAdapter(srv.URL)

	_, err := a.FetchToken(context.Background())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.JSONEq(t, `{"code":"INVALID_CLIENT","message":"bad secret"}`, string(authErr.Raw))
}

func TestTokenAdapter_NonJSONReply(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `<html>gateway down</html>`, nil)
	a := newTestTokenAdapter(srv.URL)

	_, err := a.FetchToken(context.Background())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, `"<html>gateway down</html>"`, string(authErr.Raw))
}

func TestTokenAdapter_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	a := newTestTokenAdapter(srv.URL)

	_, err := a.FetchToken(context.Background())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
}

func TestTokenAdapter_ReauthenticatesWithoutCache(t *testing.T) {
	var calls atomic.Int32
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"tok","expires_at":1893456000}`, &calls)
	a := newTestTokenAdapter(srv.URL)

	for i := 0; i < 3; i++ {
		_, err := a.FetchToken(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestTokenAdapter_CachedToken(t *testing.T) {
	var calls atomic.Int32
	expires := time.Now().Add(time.Hour).Unix()
	srv := newTokenServer(t, http.StatusOK, fmt.Sprintf(`{"access_token":"tok","expires_at":%d}`, expires), &calls)
	cache := NewTokenCache(time.Minute)

	for i := 0; i < 3; i++ {
		tok, err := newTestTokenAdapter(srv.URL).WithCache(cache).FetchToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok", tok)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenAdapter_RedirectURL(t *testing.T) {
	a := newTestTokenAdapter("")

	assert.Equal(t, "https://mercury.phonepe.com/checkout/x", a.RedirectURL([]byte(`{"orderId":"OMO1","state":"PENDING","redirectUrl":"https://mercury.phonepe.com/checkout/x"}`)))
	assert.Empty(t, a.RedirectURL([]byte(`{"data":{"instrumentResponse":{"redirectInfo":{"url":"https://x"}}}}`)))
}

func TestTokenAdapter_Payload(t *testing.T) {
	a := newTestTokenAdapter("")

	payload := a.Payload(Order{
		ID:          "ORD_1700000000000",
		RedirectURL: "https://joyrentals.store/phonepe-redirect.html",
		Request: PaymentRequest{
			AmountPaise: 1000,
			Phone:       "9999999999",
			Email:       "a@example.com",
			City:        "Goa",
			Pincode:     "403001",
		},
	}).(tokenPayload)

	assert.Equal(t, "ORD_1700000000000", payload.MerchantOrderID)
	assert.Equal(t, int64(1000), payload.Amount)
	assert.Equal(t, metaInfo{UDF1: "9999999999", UDF2: "a@example.com", UDF3: "Goa", UDF4: "403001"}, payload.MetaInfo)
	assert.Equal(t, "PG_CHECKOUT", payload.PaymentFlow.Type)
	assert.Equal(t, "Payment for customer", payload.PaymentFlow.Message)
	assert.Equal(t, "https://joyrentals.store/phonepe-redirect.html", payload.PaymentFlow.MerchantURLs.RedirectURL)
}
