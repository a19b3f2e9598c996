package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// ProtocolResolver yields the Protocol for the currently configured credentials.
type ProtocolResolver interface {
	Resolve() (Protocol, error)
}

// Stage names a step of one initiation; it is reported in logs.
type Stage string

const (
	StageValidating           Stage = "validating"
	StageResolvingCredentials Stage = "resolving_credentials"
	StageAuthenticating       Stage = "authenticating"
	StageRequestingSession    Stage = "requesting_session"
	StageNormalizingResponse  Stage = "normalizing_response"
)

// PaymentManager runs the initiation pipeline. It holds no per-order state;
// concurrent calls are independent.
type PaymentManager struct {
	resolver    ProtocolResolver
	requester   *SessionRequester
	orderIDs    *OrderIDGenerator
	redirectURL string
	logger      *zap.SugaredLogger
}

// NewPaymentManager wires the pipeline. redirectURL is the fixed frontend page
// PhonePe sends the customer back to.
func NewPaymentManager(resolver ProtocolResolver, requester *SessionRequester, redirectURL string, logger *zap.SugaredLogger) *PaymentManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PaymentManager{
		resolver:    resolver,
		requester:   requester,
		orderIDs:    NewOrderIDGenerator(),
		redirectURL: redirectURL,
		logger:      logger,
	}
}

// InitiatePayment validates body, authenticates with PhonePe, requests a
// checkout session and returns its redirect URL. The first failure ends the
// initiation.
func (m *PaymentManager) InitiatePayment(ctx context.Context, body []byte) (*SessionResult, error) {
	req, err := ParseRequest(body)
	if err != nil {
		m.logger.Infow("payment request rejected", "stage", StageValidating, "error", err)
		return nil, err
	}

	proto, err := m.resolver.Resolve()
	if err != nil {
		m.logger.Errorw("phonepe credentials unavailable", "stage", StageResolvingCredentials, "error", err)
		return nil, err
	}

	orderID := m.orderIDs.Next(proto.OrderPrefix())
	log := m.logger.With("order_id", orderID, "protocol", proto.Name())

	payload, err := json.Marshal(proto.Payload(Order{
		ID:          orderID,
		RedirectURL: m.redirectURL,
		Request:     req,
	}))
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", proto.Name(), err)
	}

	signed, err := proto.Authenticate(ctx, payload)
	if err != nil {
		log.Errorw("phonepe auth error", "stage", StageAuthenticating, "error", err)
		return nil, err
	}

	status, reply, err := m.requester.Send(ctx, proto.PayURL(), signed)
	if err != nil {
		log.Errorw("phonepe pay request failed", "stage", StageRequestingSession, "error", err)
		return nil, err
	}
	log.Debugw("phonepe response", "status", status, "body", string(reply))

	res, err := Normalize(proto, status, reply, orderID)
	if err != nil {
		log.Warnw("phonepe returned no redirect url", "stage", StageNormalizingResponse, "status", status, "body", string(reply))
		return nil, err
	}

	log.Infow("phonepe checkout session created", "amount_paise", req.AmountPaise)
	return res, nil
}
