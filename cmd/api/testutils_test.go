package main

import (
	"context"
	"joyrentals/internal/payments"
	"joyrentals/internal/ratelimiter"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testOrigin = "https://joyrentals.store"

// stubInitiator returns a canned result or error and counts its calls.
type stubInitiator struct {
	result *payments.SessionResult
	err    error
	calls  atomic.Int32
}

func (s *stubInitiator) InitiatePayment(ctx context.Context, body []byte) (*payments.SessionResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func newTestApplication(t *testing.T, initiator paymentInitiator, cfg config) *application {
	t.Helper()

	if cfg.frontendOrigin == "" {
		cfg.frontendOrigin = testOrigin
	}
	if cfg.env == "" {
		cfg.env = "test"
	}
	if cfg.rateLimiter.TimeFrame == 0 {
		cfg.rateLimiter.TimeFrame = time.Minute
	}

	return &application{
		config:      cfg,
		logger:      zap.NewNop().Sugar(),
		payments:    initiator,
		resolver:    payments.NewResolver(func(string) string { return "" }, http.DefaultClient),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", testOrigin)
	return req
}
