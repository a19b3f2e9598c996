package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxPaymentBody = 1 << 20 //1mb

// preflightHandler answers CORS preflight requests with an empty 200.
func (app *application) preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// initiatePaymentHandler godoc
//
//	@Summary		Start a PhonePe checkout
//	@Description	Validates the amount, authenticates with PhonePe and returns the hosted checkout URL for the browser to follow.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		payments.PaymentRequest	true	"amount in rupees plus optional name, phone, email, city and pincode"
//	@Success		200		{object}	map[string]any			"success, redirectUrl and the order identifier"
//	@Failure		400		{object}	errorEnvelope			"Amount missing or PhonePe returned no redirect URL"
//	@Failure		405		{object}	errorEnvelope			"Only POST allowed"
//	@Failure		500		{object}	errorEnvelope			"Credentials missing or PhonePe auth failed"
//	@Router			/payments/initiate [post]
func (app *application) initiatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPaymentBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			app.badRequestResponse(w, r, fmt.Errorf("request body larger than %d bytes", tooLarge.Limit))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	result, err := app.payments.InitiatePayment(r.Context(), body)
	if err != nil {
		app.paymentErrorResponse(w, r, err)
		return
	}

	initiations.Add("initiated", 1)

	resp := map[string]any{
		"success":           true,
		"redirectUrl":       result.RedirectURL,
		result.OrderIDField: result.OrderID,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.logger.Errorw("write payment response", "order_id", result.OrderID, "error", err)
	}
}
